package retrieval

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Chunking bounds. Chunks are cut greedily along line boundaries; a single
// oversized line still becomes its own chunk rather than being split.
const (
	maxChunkBytes = 8192
	maxChunkLines = 400
)

// Chunk is one indexable slice of a file.
type Chunk struct {
	ChunkID       string
	FileID        string
	StartByte     int
	EndByte       int
	StartLine     int
	EndLine       int
	ContentSHA256 string
	SizeBytes     int
	Content       string
}

// ChunkFile splits content into chunks along line boundaries, respecting
// the byte and line bounds. Chunk IDs are deterministic over file ID, start
// offset, and content hash, so re-indexing unchanged files yields identical
// IDs.
func ChunkFile(fileID, content string) []Chunk {
	if content == "" {
		return nil
	}

	lines := splitKeepEnds(content)

	var chunks []Chunk
	var current []string
	currentSize := 0
	startLine := 1
	startByte := 0
	offset := 0

	for i, line := range lines {
		lineBytes := len(line)
		if len(current) > 0 && (currentSize+lineBytes > maxChunkBytes || len(current) >= maxChunkLines) {
			chunks = append(chunks, finalizeChunk(fileID, current, startLine, startByte))
			startLine = i + 1
			startByte = offset
			current = current[:0]
			currentSize = 0
		}
		current = append(current, line)
		currentSize += lineBytes
		offset += lineBytes
	}
	if len(current) > 0 {
		chunks = append(chunks, finalizeChunk(fileID, current, startLine, startByte))
	}
	return chunks
}

func finalizeChunk(fileID string, lines []string, startLine, startByte int) Chunk {
	content := strings.Join(lines, "")
	sum := sha256.Sum256([]byte(content))
	contentSHA := hex.EncodeToString(sum[:])

	idSum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", fileID, startByte, contentSHA)))
	chunkID := hex.EncodeToString(idSum[:])[:16]

	return Chunk{
		ChunkID:       chunkID,
		FileID:        fileID,
		StartByte:     startByte,
		EndByte:       startByte + len(content),
		StartLine:     startLine,
		EndLine:       startLine + len(lines) - 1,
		ContentSHA256: contentSHA,
		SizeBytes:     len(content),
		Content:       content,
	}
}

// splitKeepEnds splits on newlines, keeping the terminator on each line so
// byte offsets stay exact.
func splitKeepEnds(s string) []string {
	var lines []string
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
	}
	return lines
}
