package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-movie-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// voiceCmd は、既存の台本JSONから発音辞書の準備と音声合成のみを実行するのだ。
var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "既存の台本から音声ファイルのみを合成するのだ。",
	Long: `既存の台本JSONを読み込み、発音辞書の準備（手動辞書 → 検証済み単語 →
AI解析の順で登録）と、話者単位の直列音声合成を実行するのだ。
既存の音声ファイルは再合成せず再利用されるのだよ。`,
	RunE: voiceCommand,
}

func voiceCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := loadRuntimeConfig()

	slog.Info("音声合成モードを起動するのだ！",
		"script_file", opts.ScriptFile,
		"engine_url", cfg.EngineURL,
		"scene", opts.SceneRange)

	if err := pipeline.ExecuteVoiceOnly(ctx, cfg); err != nil {
		return fmt.Errorf("音声合成中にエラーが発生したのだ: %w", err)
	}

	slog.Info("音声合成が完了したのだ！", "output_dir", opts.OutputDir)
	return nil
}
