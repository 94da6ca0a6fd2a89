package prompt

import (
	"strings"
	"testing"
)

func TestGetPromptByMode(t *testing.T) {
	t.Run("対応モードはテンプレートを返すのだ", func(t *testing.T) {
		for _, mode := range []string{ModeSolo, ModeDialogue} {
			content, err := GetPromptByMode(mode)
			if err != nil {
				t.Fatalf("モード %s の取得に失敗したのだ: %v", mode, err)
			}
			if content == "" {
				t.Errorf("モード %s のテンプレートが空なのだ", mode)
			}
		}
	})

	t.Run("未対応モードはエラーなのだ", func(t *testing.T) {
		if _, err := GetPromptByMode("opera"); err == nil {
			t.Error("未対応モードが通ってしまったのだ")
		}
	})
}

func TestPromptBuilder(t *testing.T) {
	t.Run("入力テキストがプロンプトへ埋め込まれるのだ", func(t *testing.T) {
		builder, err := NewPromptBuilder(ModeDialogue)
		if err != nil {
			t.Fatalf("ビルダーの初期化に失敗したのだ: %v", err)
		}

		prompt, err := builder.Build(TemplateData{InputText: "ゴルーチンの解説記事"})
		if err != nil {
			t.Fatalf("組み立てに失敗したのだ: %v", err)
		}
		if !strings.Contains(prompt, "ゴルーチンの解説記事") {
			t.Error("入力テキストが埋め込まれていないのだ")
		}
		if strings.Contains(prompt, "{{.InputText}}") {
			t.Error("プレースホルダが展開されていないのだ")
		}
	})

	t.Run("読み検証のテンプレートも組み立てられるのだ", func(t *testing.T) {
		builder, err := NewReadingPromptBuilder()
		if err != nil {
			t.Fatalf("ビルダーの初期化に失敗したのだ: %v", err)
		}
		prompt, err := builder.Build(TemplateData{InputText: "VOICEVOXを使うのだ"})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(prompt, "VOICEVOXを使うのだ") {
			t.Error("入力テキストが埋め込まれていないのだ")
		}
	})
}
