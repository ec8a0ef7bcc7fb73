package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/keagan/videomaker/pkg/util"
	ffmpeg_go "github.com/u2takey/ffmpeg-go"
)

// ProbeVideo extracts metadata from a video file with ffprobe. A deadline on
// ctx bounds the probe.
func ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if !util.FileExists(filePath) {
		return nil, fmt.Errorf("video file not found: %s", filePath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		output string
		err    error
	)
	if deadline, ok := ctx.Deadline(); ok {
		output, err = ffmpeg_go.ProbeWithTimeout(filePath, time.Until(deadline), ffmpeg_go.KwArgs{})
	} else {
		output, err = ffmpeg_go.Probe(filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(filePath, []byte(output))
}

// ProbeVideo probes through the executor, logging the result. When the
// executor was configured with an ffmpeg path that has an ffprobe beside it,
// that ffprobe is used instead of the one on PATH.
func (e *Executor) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	var (
		info *VideoInfo
		err  error
	)
	if e.ffprobePath == "" {
		info, err = ProbeVideo(ctx, filePath)
	} else {
		info, err = e.probeWith(ctx, filePath)
	}
	if err != nil {
		return nil, err
	}
	e.logger.Debug().
		Str("file", filePath).
		Dur("duration", info.Duration).
		Int("width", info.Width).
		Int("height", info.Height).
		Msg("probed video")
	return info, nil
}

// ProbePath returns the ffprobe binary used by ProbeVideo
func (e *Executor) ProbePath() string {
	if e.ffprobePath == "" {
		return "ffprobe"
	}
	return e.ffprobePath
}

func (e *Executor) probeWith(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if !util.FileExists(filePath) {
		return nil, fmt.Errorf("video file not found: %s", filePath)
	}

	e.logger.Debug().
		Str("cmd", e.ffprobePath).
		Str("file", filePath).
		Msg("executing ffprobe")

	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "quiet", "-show_format", "-show_streams", "-of", "json", filePath)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(filePath, output)
}

func parseProbe(filePath string, output []byte) (*VideoInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &VideoInfo{
		FilePath: filePath,
	}

	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(dur * float64(time.Second))
	}

	if br, err := strconv.ParseInt(probe.Format.BitRate, 10, 64); err == nil {
		info.Bitrate = br
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if info.VideoCodec != "" {
				continue
			}
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = stream.CodecName
			if stream.RFrameRate != "" {
				info.FPS = util.ParseFrameRate(stream.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
			info.AudioCodec = stream.CodecName
			if br, err := strconv.ParseInt(stream.BitRate, 10, 64); err == nil {
				info.AudioBitrate = br
			}
		}
	}

	if info.Duration <= 0 {
		return nil, fmt.Errorf("could not determine duration of %s", filePath)
	}

	return info, nil
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		BitRate    string `json:"bit_rate"`
	} `json:"streams"`
}
