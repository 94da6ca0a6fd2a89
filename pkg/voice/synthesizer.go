// Package voice は TTS エンジンとの境界を定義するのだ。
// 実際の波形合成はエンジン側の責務で、このパッケージは
// 呼び出し・読み登録・再試行・長さ計測だけを担います。
package voice

import (
	"context"

	"github.com/shouni/go-movie-kit/pkg/kana"
)

// Result は1フレーズぶんの合成結果です。
type Result struct {
	Data     []byte  // WAV バイト列
	Duration float64 // 秒
}

// Synthesizer は1話者ぶんの音声合成能力を表すインターフェースです。
type Synthesizer interface {
	// Synthesize はテキストから音声を合成し、WAVデータと実測の長さを返す。
	Synthesize(ctx context.Context, text string) (*Result, error)

	// RegisterWord は発音辞書のエントリをエンジンのユーザー辞書へ登録する。
	// SupportsUserDict が false のエンジンでは呼んではいけないのだ。
	RegisterWord(ctx context.Context, entry kana.Entry) error

	// SupportsUserDict は起動時に一度だけ解決されたユーザー辞書対応の
	// ケーパビリティフラグを返す。呼び出しごとに再探索はしないのだ。
	SupportsUserDict() bool
}
