// Package asset は成果物ファイルの命名規則と再利用判定を一箇所に集めるのだ。
// 固定幅ゼロ詰めの連番ファイル名は再開時のスキップ判定の要なので、
// ここ以外で組み立ててはいけないのだ。
package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultAudioDir は合成された音声を格納するデフォルトのディレクトリ名です。
	DefaultAudioDir = "audio"
	// DefaultSlideDir は生成されたスライド画像を格納するデフォルトのディレクトリ名です。
	DefaultSlideDir = "slides"
	// DefaultDescriptorName は合成結果ディスクリプタのデフォルト JSON ファイル名です。
	DefaultDescriptorName = "composition.json"

	// audioFilePattern はフィルタ前の台本全体で採番された OriginalIndex をキーにする。
	audioFilePattern = "voice_%04d.wav"
	// slideFilePattern はセクション番号をキーにする。
	slideFilePattern = "slide_%03d.png"
)

var (
	// AudioFileRegex は音声ファイル (voice_0001.wav 等) に一致します
	AudioFileRegex = regexp.MustCompile(`^voice_\d{4}\.wav$`)
	// SlideFileRegex はスライド画像 (slide_001.png 等) に一致します
	SlideFileRegex = regexp.MustCompile(`^slide_\d{3}\.png$`)
)

// AudioFileName は OriginalIndex から音声ファイル名を生成します。
func AudioFileName(originalIndex int) string {
	return fmt.Sprintf(audioFilePattern, originalIndex)
}

// SlideFileName はセクション番号からスライドファイル名を生成します。
func SlideFileName(sectionIndex int) string {
	return fmt.Sprintf(slideFilePattern, sectionIndex)
}

// DescriptorFileName はシーン範囲ラベルを織り込んだディスクリプタ名を返すのだ。
// ラベルが空なら既定名をそのまま使います。
func DescriptorFileName(sceneLabel string) string {
	if sceneLabel == "" {
		return DefaultDescriptorName
	}
	ext := filepath.Ext(DefaultDescriptorName)
	base := strings.TrimSuffix(DefaultDescriptorName, ext)
	return fmt.Sprintf("%s_%s%s", base, sceneLabel, ext)
}

// Reusable は指定パスに空でないファイルが存在するかを返します。
// 成果物を生成するすべてのステージは、生成前にこの判定で再利用を試みるのだ。
func Reusable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolveOutputPath(baseDir, fileName)
}

// RendererRelative はディスクリプタの置き場所から見た相対パスを返します。
// レンダラーへ渡すパスは常に相対で、区切りはスラッシュに正規化するのだ。
func RendererRelative(descriptorDir, assetPath string) (string, error) {
	rel, err := filepath.Rel(descriptorDir, assetPath)
	if err != nil {
		return "", fmt.Errorf("相対パスの解決に失敗したのだ (%s → %s): %w", descriptorDir, assetPath, err)
	}
	return filepath.ToSlash(rel), nil
}
