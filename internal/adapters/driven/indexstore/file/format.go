package file

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

const (
	formatVersion = 1
	manifestFile  = "index_manifest.json"
	chunksFile    = "chunks.jsonl"
	vectorsFile   = "vectors.f32"
)

// manifest describes a stored index and how to interpret it.
type manifest struct {
	FormatVersion int    `json:"format_version"`
	CreatedAt     string `json:"created_at"`
	StoreID       string `json:"store_id"`
	CourseID      int64  `json:"course_id"`
	DocumentID    int64  `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	ModelID       string `json:"model_id"`
	Dim           int    `json:"dim"`
	Count         int    `json:"count"`
}

// writeIndex writes index artifacts to dir.
func writeIndex(dir string, idx *domain.DocumentIndex) error {
	if idx.Dimension <= 0 {
		return fmt.Errorf("invalid dim: %d", idx.Dimension)
	}
	if !idx.Consistent() {
		return fmt.Errorf("inconsistent index: %d chunks, %d vectors", len(idx.Chunks), len(idx.Vectors))
	}

	created := idx.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	m := manifest{
		FormatVersion: formatVersion,
		CreatedAt:     created.UTC().Format(time.RFC3339Nano),
		StoreID:       idx.StoreID,
		CourseID:      idx.CourseID,
		DocumentID:    idx.DocumentID,
		DocumentTitle: idx.DocumentTitle,
		ModelID:       idx.ModelID,
		Dim:           idx.Dimension,
		Count:         len(idx.Chunks),
	}

	// vectors and chunks go first; the manifest marks the directory complete
	if err := writeVectors(filepath.Join(dir, vectorsFile), idx.Vectors); err != nil {
		return err
	}
	if err := writeChunks(filepath.Join(dir, chunksFile), idx.Chunks); err != nil {
		return err
	}

	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return writeFileSync(filepath.Join(dir, manifestFile), mb)
}

func writeChunks(path string, chunks []domain.Chunk) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create chunks file: %w", err)
	}
	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeVectors(path string, vectors [][]float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create vectors file: %w", err)
	}
	bw := bufio.NewWriter(f)
	for _, v := range vectors {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			_ = f.Close()
			return fmt.Errorf("cannot write vectors: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeFileSync(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// readIndex reads an index from dir containing manifest + chunks + vectors.
func readIndex(dir string) (*domain.DocumentIndex, error) {
	manifestPath := filepath.Join(dir, manifestFile)
	b, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", manifestPath, err)
	}
	var m manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON %s: %w", manifestPath, err)
	}
	if m.FormatVersion != formatVersion {
		return nil, fmt.Errorf("unsupported format version %d", m.FormatVersion)
	}
	if m.Dim <= 0 {
		return nil, fmt.Errorf("invalid dim in manifest: %d", m.Dim)
	}

	chunks, err := readChunks(filepath.Join(dir, chunksFile))
	if err != nil {
		return nil, err
	}
	if len(chunks) != m.Count {
		return nil, fmt.Errorf("chunk count mismatch: got %d want %d", len(chunks), m.Count)
	}
	vectors, err := readVectors(filepath.Join(dir, vectorsFile), m.Count, m.Dim)
	if err != nil {
		return nil, err
	}

	created, _ := time.Parse(time.RFC3339Nano, m.CreatedAt)
	return &domain.DocumentIndex{
		StoreID:       m.StoreID,
		CourseID:      m.CourseID,
		DocumentID:    m.DocumentID,
		DocumentTitle: m.DocumentTitle,
		ModelID:       m.ModelID,
		Dimension:     m.Dim,
		Chunks:        chunks,
		Vectors:       vectors,
		CreatedAt:     created,
	}, nil
}

func readChunks(path string) ([]domain.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open chunks file %s: %w", path, err)
	}
	defer f.Close()

	var out []domain.Chunk
	dec := json.NewDecoder(bufio.NewReader(f))
	for {
		var c domain.Chunk
		err := dec.Decode(&c)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid chunks JSONL %s: %w", path, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func readVectors(path string, count, dim int) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open vector file %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat vector file %s: %w", path, err)
	}
	expected := int64(count) * int64(dim) * 4
	if expected != st.Size() {
		return nil, fmt.Errorf("vector file size mismatch: got %d want %d (count=%d dim=%d)", st.Size(), expected, count, dim)
	}

	flat := make([]float32, count*dim)
	if err := binary.Read(bufio.NewReader(f), binary.LittleEndian, flat); err != nil {
		return nil, fmt.Errorf("cannot read vectors from %s: %w", path, err)
	}
	out := make([][]float32, count)
	for i := range out {
		out[i] = flat[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return out, nil
}

// atomicSwap replaces destDir with srcDir, keeping destDir+".bak" until the
// new directory is in place.
func atomicSwap(srcDir, destDir string) error {
	if err := os.MkdirAll(filepath.Dir(destDir), 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}
