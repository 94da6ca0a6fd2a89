package domain

import (
	"errors"
	"testing"
)

func TestParseScript(t *testing.T) {
	t.Run("LLMからのレスポンス形式をシミュレートするのだ", func(t *testing.T) {
		inputJSON := `{
			"title": "ずんだもんの技術解説",
			"sections": [
				{
					"title": "はじめに",
					"slide_prompt": "緑の背景にタイトルロゴ",
					"narrations": [
						{"text": "こんにちは、ずんだもんなのだ。", "reading": "コンニチワ、ズンダモンナノダ。", "persona_id": "zundamon"}
					]
				}
			],
			"words": [{"surface": "ずんだもん", "reading": "ズンダモン", "accent": 0}]
		}`

		script, err := ParseScript([]byte(inputJSON))
		if err != nil {
			t.Fatalf("パース失敗なのだ: %v", err)
		}
		if script.Title != "ずんだもんの技術解説" {
			t.Errorf("タイトルが違うのだ: %s", script.Title)
		}
		if len(script.Sections) != 1 || script.Sections[0].Narrations[0].PersonaID != "zundamon" {
			t.Error("セクション内容が正しくパースされていないのだ")
		}
		if len(script.Words) != 1 || script.Words[0].Reading != "ズンダモン" {
			t.Error("単語リストが正しくパースされていないのだ")
		}
	})

	t.Run("セクションが空だと致命的エラーになるのだ", func(t *testing.T) {
		_, err := ParseScript([]byte(`{"title": "空っぽ", "sections": []}`))
		var vErr *InputValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("InputValidationError が返りませんでした: %v", err)
		}
	})

	t.Run("読みの欠落は致命的エラーになるのだ", func(t *testing.T) {
		inputJSON := `{"sections": [{"title": "t", "narrations": [{"text": "読みがない"}]}]}`
		if _, err := ParseScript([]byte(inputJSON)); err == nil {
			t.Error("読みの欠落でエラーが発生しませんでした")
		}
	})

	t.Run("スライドプロンプトと参照画像の同時指定は弾かれるのだ", func(t *testing.T) {
		inputJSON := `{"sections": [{
			"title": "t",
			"slide_prompt": "プロンプト",
			"source_image_url": "https://example.com/a.png",
			"narrations": [{"text": "本文", "reading": "ホンブン"}]
		}]}`
		if _, err := ParseScript([]byte(inputJSON)); err == nil {
			t.Error("XOR制約の違反でエラーが発生しませんでした")
		}
	})
}
