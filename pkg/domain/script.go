package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Script は LLM から返される（または手書きされる）台本全体の構造です。
type Script struct {
	Title    string      `json:"title"`
	Sections []Section   `json:"sections"`
	Words    []ScriptWord `json:"words,omitempty"` // LLM が検証した固有名詞の読み一覧
}

// Section は台本の1章（スライド1枚ぶん）を表します。
type Section struct {
	Title          string          `json:"title"`
	Narrations     []NarrationTurn `json:"narrations"`
	SlidePrompt    string          `json:"slide_prompt,omitempty"`     // スライド画像を生成するためのプロンプト
	SourceImageURL string          `json:"source_image_url,omitempty"` // 生成せず参照画像をそのまま使う場合のURL
	Background     string          `json:"background,omitempty"`       // このセクションだけ背景を差し替える場合のパス
}

// NarrationTurn は1人の話者による一続きのナレーションです。
// Reading は TTS の発音を確定させるためのカタカナ読みで、必須なのだ。
type NarrationTurn struct {
	Text      string `json:"text"`
	Reading   string `json:"reading"`
	PersonaID string `json:"persona_id,omitempty"`
}

// ScriptWord は台本に同梱される読み検証済みの単語エントリです。
// 辞書登録時には手動辞書より低く、自動解析より高い優先度で扱われます。
type ScriptWord struct {
	Surface string `json:"surface"`
	Reading string `json:"reading"`
	Accent  int    `json:"accent,omitempty"`
}

// LoadScript は指定されたファイルパスからJSONを読み込み、台本を返すのだ。
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("台本ファイルの読み込みに失敗したのだ: %w", err)
	}
	return ParseScript(data)
}

// ParseScript はJSONバイト列から台本をパースし、構造検証まで行うのだ。
func ParseScript(data []byte) (*Script, error) {
	script := &Script{}
	if err := json.Unmarshal(data, script); err != nil {
		return nil, fmt.Errorf("台本JSONのデコードに失敗したのだ: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return script, nil
}

// Validate は台本が構造的に妥当か検証します。
// セクションの欠落、本文・読みの欠落、スライド指定の競合は致命的エラーです。
func (s *Script) Validate() error {
	if len(s.Sections) == 0 {
		return &InputValidationError{Field: "sections", Reason: "セクションが1つもありません"}
	}
	for i, sec := range s.Sections {
		if sec.SlidePrompt != "" && sec.SourceImageURL != "" {
			return &InputValidationError{
				Field:  fmt.Sprintf("sections[%d]", i),
				Reason: "slide_prompt と source_image_url は同時に指定できません",
			}
		}
		for j, n := range sec.Narrations {
			where := fmt.Sprintf("sections[%d].narrations[%d]", i, j)
			if strings.TrimSpace(n.Text) == "" {
				return &InputValidationError{Field: where + ".text", Reason: "本文が空です"}
			}
			if strings.TrimSpace(n.Reading) == "" {
				return &InputValidationError{Field: where + ".reading", Reason: "カタカナ読みは必須です"}
			}
		}
	}
	return nil
}
