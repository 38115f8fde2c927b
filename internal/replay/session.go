// Package replay records a memory snapshot followed by per-frame input and
// plays it back in a loop.
//
// A recording file is the raw memory dump (init flag byte, permanent arena,
// transient arena) followed by one fixed-size little-endian core.GameInput
// per frame. There is no header; the reader must use the same memory sizes.
package replay

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/handmade/internal/core"
)

var (
	ErrNotRecording   = errors.New("replay: not recording")
	ErrNotPlaying     = errors.New("replay: not playing back")
	ErrEmptyRecording = errors.New("replay: recording has no frames")
)

// State is the session's mode.
type State int

const (
	Idle State = iota
	Recording
	Playing
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Playing:
		return "playing"
	default:
		return "idle"
	}
}

// InputSize is the encoded size of one frame of input.
var InputSize = binary.Size(core.GameInput{})

// Session owns one recording file.
type Session struct {
	path   string
	logger *log.Logger

	state  State
	file   *os.File
	w      *bufio.Writer
	r      *bufio.Reader
	mem    *core.Memory
	frames int
}

// NewSession creates an idle session for path. A leading ~ is expanded.
func NewSession(path string, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{path: expandHome(path), logger: logger}
}

// Path returns the recording file.
func (s *Session) Path() string { return s.path }

// State returns the current mode.
func (s *Session) State() State { return s.state }

// Frames returns the frames recorded, or played since the loop last
// restarted.
func (s *Session) Frames() int { return s.frames }

// BeginRecording snapshots mem to a fresh file. Input appended by
// RecordInput follows the snapshot.
func (s *Session) BeginRecording(mem *core.Memory) error {
	if s.state != Idle {
		return fmt.Errorf("replay: cannot record while %s", s.state)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("replay: failed to create directory: %w", err)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("replay: failed to create %s: %w", s.path, err)
	}

	w := bufio.NewWriter(f)
	if err := writeMemory(w, mem); err != nil {
		f.Close()
		return err
	}

	s.file, s.w, s.mem = f, w, mem
	s.state = Recording
	s.frames = 0
	s.logger.Info("recording started", "path", s.path, "memory", mem.TotalSize())
	return nil
}

// RecordInput appends one frame of input.
func (s *Session) RecordInput(in *core.GameInput) error {
	if s.state != Recording {
		return ErrNotRecording
	}
	if err := binary.Write(s.w, binary.LittleEndian, in); err != nil {
		return fmt.Errorf("replay: failed to write input: %w", err)
	}
	s.frames++
	return nil
}

// EndRecording flushes and closes the file and returns the frame count.
func (s *Session) EndRecording() (int, error) {
	if s.state != Recording {
		return 0, ErrNotRecording
	}
	frames := s.frames
	err := s.w.Flush()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	s.reset()
	if err != nil {
		return frames, fmt.Errorf("replay: failed to finish recording: %w", err)
	}
	s.logger.Info("recording finished", "path", s.path, "frames", frames)
	return frames, nil
}

// BeginPlayback restores mem from the recording and positions the reader at
// the first frame of input.
func (s *Session) BeginPlayback(mem *core.Memory) error {
	if s.state != Idle {
		return fmt.Errorf("replay: cannot play back while %s", s.state)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("replay: failed to open %s: %w", s.path, err)
	}
	s.file, s.mem = f, mem
	s.r = bufio.NewReader(f)
	if err := s.rewind(); err != nil {
		f.Close()
		s.reset()
		return err
	}
	s.state = Playing
	s.logger.Info("playback started", "path", s.path)
	return nil
}

// PlaybackInput overwrites in with the next recorded frame. At the end of
// the recording memory is restored again and playback loops to the first
// frame.
func (s *Session) PlaybackInput(in *core.GameInput) error {
	if s.state != Playing {
		return ErrNotPlaying
	}
	err := binary.Read(s.r, binary.LittleEndian, in)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		if s.frames == 0 {
			return ErrEmptyRecording
		}
		if err := s.rewind(); err != nil {
			return err
		}
		err = binary.Read(s.r, binary.LittleEndian, in)
	}
	if err != nil {
		return fmt.Errorf("replay: failed to read input: %w", err)
	}
	s.frames++
	return nil
}

// EndPlayback closes the recording.
func (s *Session) EndPlayback() error {
	if s.state != Playing {
		return ErrNotPlaying
	}
	err := s.file.Close()
	s.reset()
	s.logger.Info("playback stopped", "path", s.path)
	return err
}

// Toggle cycles idle -> recording -> playback -> idle.
func (s *Session) Toggle(mem *core.Memory) (State, error) {
	var err error
	switch s.state {
	case Idle:
		err = s.BeginRecording(mem)
	case Recording:
		if _, err = s.EndRecording(); err == nil {
			err = s.BeginPlayback(mem)
		}
	default:
		err = s.EndPlayback()
	}
	return s.state, err
}

// Close ends whatever the session is doing.
func (s *Session) Close() error {
	switch s.state {
	case Recording:
		_, err := s.EndRecording()
		return err
	case Playing:
		return s.EndPlayback()
	}
	return nil
}

func (s *Session) rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("replay: failed to rewind: %w", err)
	}
	s.r.Reset(s.file)
	if err := readMemory(s.r, s.mem); err != nil {
		return err
	}
	s.frames = 0
	return nil
}

func (s *Session) reset() {
	s.state = Idle
	s.file, s.w, s.r, s.mem = nil, nil, nil, nil
}

func writeMemory(w io.Writer, mem *core.Memory) error {
	flag := []byte{0}
	if mem.IsInitialized {
		flag[0] = 1
	}
	for _, b := range [][]byte{flag, mem.Permanent, mem.Transient} {
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("replay: failed to write memory: %w", err)
		}
	}
	return nil
}

func readMemory(r io.Reader, mem *core.Memory) error {
	var flag [1]byte
	for _, b := range [][]byte{flag[:], mem.Permanent, mem.Transient} {
		if _, err := io.ReadFull(r, b); err != nil {
			return fmt.Errorf("replay: recording is shorter than %d bytes of memory: %w", mem.TotalSize(), err)
		}
	}
	mem.IsInitialized = flag[0] != 0
	return nil
}

// FrameCount returns the number of input frames in the recording at path for
// a memory of the given layout.
func FrameCount(path string, mem *core.Memory) (int, error) {
	info, err := os.Stat(expandHome(path))
	if err != nil {
		return 0, fmt.Errorf("replay: failed to stat %s: %w", path, err)
	}
	body := info.Size() - int64(mem.TotalSize())
	if body < 0 {
		return 0, fmt.Errorf("replay: %s is smaller than the %d byte memory snapshot", path, mem.TotalSize())
	}
	return int(body / int64(InputSize)), nil
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
