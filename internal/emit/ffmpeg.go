package emit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"loom/internal/services"
	"loom/internal/tensor"
)

var commandContext = exec.CommandContext

// Client defines the external encoding behaviour the emitter needs.
type Client interface {
	// WriteVideo encodes a [C,T,H,W] sample in [0,1] into an mp4 at path,
	// overwriting any existing file.
	WriteVideo(ctx context.Context, path string, sample *tensor.Tensor, fps int) error
	// MuxAudio combines a silent video and an audio asset into outPath,
	// trimmed to the shorter stream, overwriting any existing file.
	MuxAudio(ctx context.Context, videoPath, audioPath, outPath string) error
}

// Option configures the ffmpeg client.
type Option func(*FFmpeg)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(f *FFmpeg) {
		if binary != "" {
			f.binary = binary
		}
	}
}

// FFmpeg wraps the ffmpeg command-line tool.
type FFmpeg struct {
	binary string
}

// NewFFmpeg constructs an ffmpeg client using defaults.
func NewFFmpeg(opts ...Option) *FFmpeg {
	client := &FFmpeg{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// WriteVideo streams the sample as raw RGB frames into an ffmpeg encode.
func (f *FFmpeg) WriteVideo(ctx context.Context, path string, sample *tensor.Tensor, fps int) error {
	if path == "" {
		return errors.New("output path required")
	}
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	frames, err := rawRGBFrames(sample)
	if err != nil {
		return err
	}

	height, width := sample.Dim(2), sample.Dim(3)
	args := []string{
		"-y", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", "-",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		path,
	}

	cmd := commandContext(ctx, f.binary, args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(frames)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "emitting", "encode video",
			stderrDetail(&stderr), err)
	}
	return nil
}

// MuxAudio mirrors the original mux invocation: shortest-stream semantics,
// silent diagnostics, and forced overwrite of the output path.
func (f *FFmpeg) MuxAudio(ctx context.Context, videoPath, audioPath, outPath string) error {
	if videoPath == "" || audioPath == "" || outPath == "" {
		return errors.New("video, audio, and output paths required")
	}

	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-shortest",
		outPath,
		"-y", "-loglevel", "quiet",
	}
	cmd := commandContext(ctx, f.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "emitting", "mux audio",
			stderrDetail(&stderr), err)
	}
	return nil
}

// rawRGBFrames serializes a [C,T,H,W] tensor into rgb24 frame bytes.
func rawRGBFrames(sample *tensor.Tensor) ([]byte, error) {
	if sample == nil || sample.Rank() != 4 {
		return nil, errors.New("sample must be a [C,T,H,W] tensor")
	}
	channels, frames := sample.Dim(0), sample.Dim(1)
	height, width := sample.Dim(2), sample.Dim(3)
	if channels != 3 {
		return nil, fmt.Errorf("sample must have 3 channels, got %d", channels)
	}

	data := sample.Data()
	plane := height * width
	out := make([]byte, 0, frames*plane*3)
	for t := 0; t < frames; t++ {
		for p := 0; p < plane; p++ {
			for c := 0; c < 3; c++ {
				v := data[(c*frames+t)*plane+p]
				if v < 0 {
					v = 0
				} else if v > 1 {
					v = 1
				}
				out = append(out, byte(v*255+0.5))
			}
		}
	}
	return out, nil
}

func stderrDetail(buf *bytes.Buffer) string {
	detail := buf.String()
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return detail
}

var _ Client = (*FFmpeg)(nil)
