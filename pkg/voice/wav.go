package voice

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// 無音プレースホルダのフォーマット。VOICEVOX の既定出力に合わせるのだ。
const (
	silenceSampleRate = 24000
	silenceBitDepth   = 16

	// SilenceSecondsPerRune は音声が欠けたときの代替尺で、
	// 本文1文字あたりの秒数です。
	SilenceSecondsPerRune = 0.15
)

// WAVDuration は WAV バイト列の実測の長さ（秒）を返します。
func WAVDuration(data []byte) (float64, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("WAVとして解釈できないデータなのだ")
	}
	d, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("WAVの長さ計測に失敗したのだ: %w", err)
	}
	return d.Seconds(), nil
}

// WAVFileDuration はファイルに保存済みの WAV の長さ（秒）を返します。
func WAVFileDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("WAVファイルのオープンに失敗したのだ (%s): %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("WAVとして解釈できないファイルなのだ (%s)", path)
	}
	d, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("WAVの長さ計測に失敗したのだ (%s): %w", path, err)
	}
	return d.Seconds(), nil
}

// SilenceDurationForText は本文の文字数から無音プレースホルダの尺を見積もるのだ。
func SilenceDurationForText(text string) float64 {
	return float64(utf8.RuneCountInString(text)) * SilenceSecondsPerRune
}

// WriteSilence は指定した長さの無音 WAV をファイルへ書き出します。
// 音声素材が欠けたままでも組み立てを続行するためのプレースホルダなのだ。
func WriteSilence(path string, seconds float64) error {
	if seconds <= 0 {
		seconds = SilenceSecondsPerRune
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("無音ファイルの作成に失敗したのだ (%s): %w", path, err)
	}
	defer out.Close()

	encoder := wav.NewEncoder(out, silenceSampleRate, silenceBitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: silenceSampleRate},
		Data:           make([]int, int(float64(silenceSampleRate)*seconds)),
		SourceBitDepth: silenceBitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("無音データの書き込みに失敗したのだ (%s): %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("無音ファイルのクローズに失敗したのだ (%s): %w", path, err)
	}
	return nil
}
