package cmd

import (
	"fmt"

	"github.com/shouni/go-movie-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// planCmd は、合成を行わずにタイムラインの見積もりを表で表示するのだ。
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "タイムラインの見積もりを表で表示するのだ（ドライラン）。",
	Long: `既存の台本JSONからフレーズ分割とタイミング計算だけを行い、
各フレーズの開始時刻・長さ・話者を表で表示するのだ。
音声が未合成のフレーズは文字数からの見積もりになるのだよ。`,
	RunE: planCommand,
}

func planCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := loadRuntimeConfig()

	if err := pipeline.ExecutePlan(ctx, cfg); err != nil {
		return fmt.Errorf("タイムラインの見積もり中にエラーが発生したのだ: %w", err)
	}
	return nil
}
