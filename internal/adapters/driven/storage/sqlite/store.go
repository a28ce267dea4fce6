// Package sqlite provides the persistent chunk store backed by SQLite.
//
// Chunks and their embedding vectors live in a single database file.
// Each InsertBatch call runs in one transaction, so a document's chunks
// are either fully visible or absent even if the process dies mid-write.
// Search is exact brute-force cosine similarity over all stored vectors,
// which is sufficient at the target scale of thousands of chunks.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/repoqa-labs/repoqa-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/repoqa-labs/repoqa-cli/internal/core/domain"
	"github.com/repoqa-labs/repoqa-cli/internal/core/ports/driven"
)

// metaDimensions is the index_meta key recording the embedding size.
const metaDimensions = "dimensions"

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// Store is the SQLite-backed chunk store.
type Store struct {
	db   *sql.DB
	path string

	// writeMu serialises mutating operations. Coarse-grained by design:
	// held for the duration of one document's batch.
	writeMu sync.Mutex
}

// NewStore creates a chunk store at the specified data directory.
// If dataDir is empty, defaults to ~/.repoqa/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".repoqa", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// InsertBatch stores one document's chunks in a single transaction.
func (s *Store) InsertBatch(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	// Validate the batch before touching the database.
	dim := len(chunks[0].Embedding)
	if dim == 0 {
		return fmt.Errorf("%w: chunk %s has an empty embedding", domain.ErrInvariantViolation, chunks[0].ID)
	}
	seen := make(map[string]bool, len(chunks))
	for _, chunk := range chunks {
		if seen[chunk.ID] {
			return fmt.Errorf("%w: duplicate chunk id %s in batch", domain.ErrInvariantViolation, chunk.ID)
		}
		seen[chunk.ID] = true
		if len(chunk.Embedding) != dim {
			return fmt.Errorf("%w: chunk %s has dimension %d, batch has %d",
				domain.ErrInvariantViolation, chunk.ID, len(chunk.Embedding), dim)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.checkDimensions(ctx, tx, dim); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, seq, content, start_offset, end_offset, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Seq,
			chunk.Content, chunk.Start, chunk.End, embeddingBlob); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: chunk id %s already exists", domain.ErrInvariantViolation, chunk.ID)
			}
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// checkDimensions enforces a constant embedding dimensionality for the
// lifetime of the index, recording it on first insert.
func (s *Store) checkDimensions(ctx context.Context, tx *sql.Tx, dim int) error {
	var stored int
	err := tx.QueryRowContext(ctx,
		"SELECT value FROM index_meta WHERE key = ?", metaDimensions).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO index_meta (key, value) VALUES (?, ?)", metaDimensions, dim); err != nil {
			return fmt.Errorf("recording dimensions: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading dimensions: %w", err)
	}

	if stored != dim {
		return fmt.Errorf("%w: embedding dimension %d does not match index dimension %d; clear the index and re-ingest",
			domain.ErrInvariantViolation, dim, stored)
	}
	return nil
}

// Search scores every stored vector against the query and returns the
// topK best hits, descending by cosine similarity, ties broken by
// insertion order.
func (s *Store) Search(ctx context.Context, query []float32, topK int) ([]driven.ChunkHit, error) {
	if topK <= 0 {
		return []driven.ChunkHit{}, nil
	}

	dim, err := s.dimensions(ctx)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		// Nothing ingested yet.
		return []driven.ChunkHit{}, nil
	}
	if len(query) != dim {
		return nil, fmt.Errorf("%w: query dimension %d does not match index dimension %d",
			domain.ErrInvariantViolation, len(query), dim)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, seq, content, start_offset, end_offset, embedding
		FROM chunks ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []driven.ChunkHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Seq,
			&chunk.Content, &chunk.Start, &chunk.End, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		embedding := bytesToFloat32Slice(embeddingBlob)
		hits = append(hits, driven.ChunkHit{
			Chunk:      chunk,
			Similarity: cosineSimilarity(query, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	// Stable sort preserves rowid order among equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// GetChunk retrieves a stored chunk by ID, embedding included.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, seq, content, start_offset, end_offset, embedding
		FROM chunks WHERE id = ?
	`, id)

	var chunk domain.Chunk
	var embeddingBlob []byte
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Seq,
		&chunk.Content, &chunk.Start, &chunk.End, &embeddingBlob); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &chunk, nil
}

// Stats reports chunk and distinct document counts.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT document_id) FROM chunks")
	if err := row.Scan(&stats.ChunkCount, &stats.DocumentCount); err != nil {
		return domain.StoreStats{}, fmt.Errorf("counting chunks: %w", err)
	}
	return stats, nil
}

// DeleteDocument removes all chunks of one document atomically.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting document chunks: %w", err)
	}
	return nil
}

// Clear removes all chunks and resets the recorded dimensionality, so a
// new embedding model can be adopted by re-ingesting from scratch.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta WHERE key = ?", metaDimensions); err != nil {
		return fmt.Errorf("clearing index meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// dimensions returns the recorded embedding size, zero when unset.
func (s *Store) dimensions(ctx context.Context) (int, error) {
	var dim int
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM index_meta WHERE key = ?", metaDimensions).Scan(&dim)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading dimensions: %w", err)
	}
	return dim, nil
}

// isUniqueViolation reports whether err is a primary-key conflict.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero-magnitude vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
