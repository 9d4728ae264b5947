package capture

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const wavHeaderSize = 44

// chunkFile is one in-progress WAV chunk. Mono 16 kHz signed 16-bit PCM,
// the format the transcriber binary expects.
type chunkFile struct {
	path       string
	file       *os.File
	sampleRate int
	samples    int
	start      time.Time
}

// newChunkFile creates a chunk WAV in dir with a placeholder header; the
// real sizes are patched in on finalize.
func newChunkFile(dir string, sampleRate int, start time.Time) (*chunkFile, error) {
	path := filepath.Join(dir, fmt.Sprintf("chunk-%s.wav", start.UTC().Format("20060102T150405.000")))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create chunk file: %w", err)
	}
	chunk := &chunkFile{path: path, file: file, sampleRate: sampleRate, start: start}
	if err := chunk.writeHeader(0); err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	return chunk, nil
}

func (c *chunkFile) writeHeader(dataBytes int) error {
	var header [wavHeaderSize]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataBytes))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], uint32(c.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(c.sampleRate*2))
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataBytes))
	if _, err := c.file.WriteAt(header[:], 0); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}

// write appends PCM samples to the chunk.
func (c *chunkFile) write(samples []int16) error {
	buf := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))
	}
	if _, err := c.file.WriteAt(buf, int64(wavHeaderSize+c.samples*2)); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	c.samples += len(samples)
	return nil
}

// finalize patches the header with the real data size and closes the file.
func (c *chunkFile) finalize() error {
	if err := c.writeHeader(c.samples * 2); err != nil {
		c.file.Close()
		return err
	}
	if err := c.file.Close(); err != nil {
		return fmt.Errorf("close chunk file: %w", err)
	}
	return nil
}

// duration is the audio length represented by the written samples.
func (c *chunkFile) duration() time.Duration {
	if c.sampleRate == 0 {
		return 0
	}
	return time.Duration(c.samples) * time.Second / time.Duration(c.sampleRate)
}

func (c *chunkFile) remove() {
	os.Remove(c.path)
}
