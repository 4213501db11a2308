package worker

import (
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/clawforge/skirmish/internal/match"
)

// This file carries length-prefixed gob frames of MatchSpec/MatchResult
// between a worker-pool coordinator and an isolated subprocess worker, the
// "separate address space" alternative to the goroutine Pool. A subprocess
// worker guarantees no module-global state can leak between jobs, at the
// cost of gob's marshal overhead per job.

const ipcProtocolVersion uint16 = 1

const (
	msgTypeSpec byte = iota
	msgTypeResult
	msgTypeError
)

type ipcHeader struct {
	Version  uint16
	Type     byte
	Reserved byte
	Length   uint32
}

const ipcHeaderSize = 8

// writeFrame writes a framed, gob-encoded message.
func writeFrame(w io.Writer, msgType byte, data interface{}) error {
	var buf []byte
	if data != nil {
		var encoded gobBuffer
		if err := gob.NewEncoder(&encoded).Encode(data); err != nil {
			return fmt.Errorf("worker: ipc gob encode: %w", err)
		}
		buf = encoded.buf
	}

	header := ipcHeader{Version: ipcProtocolVersion, Type: msgType, Length: uint32(len(buf))}
	headerBuf := make([]byte, ipcHeaderSize)
	binary.LittleEndian.PutUint16(headerBuf[0:2], header.Version)
	headerBuf[2] = header.Type
	binary.LittleEndian.PutUint32(headerBuf[4:8], header.Length)

	if _, err := w.Write(headerBuf); err != nil {
		return fmt.Errorf("worker: ipc write header: %w", err)
	}
	if len(buf) > 0 {
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("worker: ipc write body: %w", err)
		}
	}
	return nil
}

// readFrame reads one framed message and returns its type and raw gob body.
func readFrame(r io.Reader) (byte, []byte, error) {
	headerBuf := make([]byte, ipcHeaderSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return 0, nil, fmt.Errorf("worker: ipc read header: %w", err)
	}
	version := binary.LittleEndian.Uint16(headerBuf[0:2])
	if version != ipcProtocolVersion {
		return 0, nil, fmt.Errorf("worker: ipc version mismatch: got %d want %d", version, ipcProtocolVersion)
	}
	msgType := headerBuf[2]
	length := binary.LittleEndian.Uint32(headerBuf[4:8])

	var body []byte
	if length > 0 {
		body = make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			return 0, nil, fmt.Errorf("worker: ipc read body: %w", err)
		}
	}
	return msgType, body, nil
}

func decodeGob(data []byte, out interface{}) error {
	return gob.NewDecoder(&gobBuffer{buf: data}).Decode(out)
}

// gobBuffer is a minimal growable byte buffer implementing io.Writer and
// io.Reader for one frame's encode/decode.
type gobBuffer struct {
	buf []byte
	pos int
}

func (b *gobBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *gobBuffer) Read(p []byte) (int, error) {
	if b.pos >= len(b.buf) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.pos:])
	b.pos += n
	return n, nil
}

// RunSubprocessJob sends spec over conn and waits for the framed result,
// used by a subprocess-isolated worker transport. The subprocess side calls
// ServeSubprocessWorker in a loop using the same framing.
func RunSubprocessJob(conn io.ReadWriter, spec match.Spec) (match.Result, error) {
	if err := writeFrame(conn, msgTypeSpec, spec); err != nil {
		return match.Result{}, err
	}
	msgType, body, err := readFrame(conn)
	if err != nil {
		return match.Result{}, err
	}
	switch msgType {
	case msgTypeResult:
		var result match.Result
		if err := decodeGob(body, &result); err != nil {
			return match.Result{}, err
		}
		return result, nil
	case msgTypeError:
		var msg string
		_ = decodeGob(body, &msg)
		return match.Result{}, fmt.Errorf("worker: subprocess job failed: %s", msg)
	default:
		return match.Result{}, fmt.Errorf("worker: unexpected ipc message type %d", msgType)
	}
}

// ServeSubprocessWorker runs inside the isolated subprocess: it reads specs
// one at a time, runs them via run, and writes back framed results. It
// never shares state across jobs beyond what run's closure captures
// (read-only template data), matching the pool's "cleared module-global
// state" requirement.
func ServeSubprocessWorker(conn io.ReadWriter, run RunFunc) error {
	for {
		msgType, body, err := readFrame(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if msgType != msgTypeSpec {
			continue
		}
		var spec match.Spec
		if err := decodeGob(body, &spec); err != nil {
			return err
		}

		result, runErr := run(spec)
		if runErr != nil {
			if err := writeFrame(conn, msgTypeError, runErr.Error()); err != nil {
				return err
			}
			continue
		}
		if err := writeFrame(conn, msgTypeResult, result); err != nil {
			return err
		}
	}
}
