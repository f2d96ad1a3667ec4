package retrieval

import (
	"strings"
	"testing"
)

func TestChunkFileEmpty(t *testing.T) {
	if got := ChunkFile("f", ""); got != nil {
		t.Errorf("expected no chunks for empty content, got %v", got)
	}
}

func TestChunkFileSingleChunk(t *testing.T) {
	content := "line one\nline two\nline three\n"
	chunks := ChunkFile("f", content)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Content != content {
		t.Errorf("chunk content mismatch")
	}
	if c.StartLine != 1 || c.EndLine != 3 {
		t.Errorf("expected lines 1-3, got %d-%d", c.StartLine, c.EndLine)
	}
	if c.StartByte != 0 || c.EndByte != len(content) {
		t.Errorf("expected bytes 0-%d, got %d-%d", len(content), c.StartByte, c.EndByte)
	}
}

func TestChunkFileSplitsOnByteBound(t *testing.T) {
	line := strings.Repeat("x", 1023) + "\n" // 1024 bytes per line
	content := strings.Repeat(line, 20)      // 20 KiB total
	chunks := ChunkFile("f", content)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	total := 0
	prevEnd := 0
	for i, c := range chunks {
		if c.SizeBytes > maxChunkBytes {
			t.Errorf("chunk %d exceeds byte bound: %d", i, c.SizeBytes)
		}
		if c.StartByte != prevEnd {
			t.Errorf("chunk %d not contiguous: start %d, previous end %d", i, c.StartByte, prevEnd)
		}
		prevEnd = c.EndByte
		total += c.SizeBytes
	}
	if total != len(content) {
		t.Errorf("chunks cover %d bytes, content is %d", total, len(content))
	}
}

func TestChunkFileSplitsOnLineBound(t *testing.T) {
	content := strings.Repeat("a\n", 1000)
	chunks := ChunkFile("f", content)
	for i, c := range chunks {
		if lines := c.EndLine - c.StartLine + 1; lines > maxChunkLines {
			t.Errorf("chunk %d exceeds line bound: %d lines", i, lines)
		}
	}
}

func TestChunkFileDeterministicIDs(t *testing.T) {
	content := strings.Repeat("some content\n", 50)
	a := ChunkFile("path/to/file.go", content)
	b := ChunkFile("path/to/file.go", content)

	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ChunkID != b[i].ChunkID {
			t.Errorf("chunk %d ID not deterministic: %s vs %s", i, a[i].ChunkID, b[i].ChunkID)
		}
		if len(a[i].ChunkID) != 16 {
			t.Errorf("chunk ID length %d, want 16", len(a[i].ChunkID))
		}
	}

	other := ChunkFile("other/file.go", content)
	if other[0].ChunkID == a[0].ChunkID {
		t.Error("different files must produce different chunk IDs")
	}
}

func TestChunkFileNoTrailingNewline(t *testing.T) {
	chunks := ChunkFile("f", "no newline at end")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].EndByte != len("no newline at end") {
		t.Errorf("unexpected end byte %d", chunks[0].EndByte)
	}
}
