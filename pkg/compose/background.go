package compose

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// VideoProber は動画ファイルのネイティブな長さ（秒）を計測するインターフェースです。
type VideoProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFProbeProber は ffprobe コマンドで長さを計測する実装なのだ。
type FFProbeProber struct {
	// Binary は ffprobe 実行ファイルのパス。空ならPATHから探す。
	Binary string
}

// NewFFProbeProber は FFProbeProber を初期化するのだ。
func NewFFProbeProber() *FFProbeProber {
	return &FFProbeProber{Binary: "ffprobe"}
}

// Duration は ffprobe でコンテナのdurationを問い合わせて秒で返します。
func (p *FFProbeProber) Duration(ctx context.Context, path string) (float64, error) {
	bin := p.Binary
	if bin == "" {
		bin = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe の実行に失敗したのだ (%s): %w", path, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe の出力を解釈できないのだ (%q): %w", strings.TrimSpace(string(out)), err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("動画の長さが0以下なのだ (%s): %f", path, seconds)
	}
	return seconds, nil
}
