package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

// 画面上の立ち位置。宣言順のデフォルト割り当ては timeline パッケージが担います。
const (
	PositionLeft   = "left"
	PositionRight  = "right"
	PositionCenter = "center"
)

// キャラクターアニメーションのスタイル。
const (
	AnimationSway   = "sway"
	AnimationBounce = "bounce"
	AnimationStatic = "static"
)

// CharacterImages は立ち絵の3点セット（基本・口開き・目閉じ）です。
// 口パク・まばたきアニメーションのためにレンダラーへそのまま渡されます。
type CharacterImages struct {
	Body       string `json:"body"`
	MouthOpen  string `json:"mouth_open,omitempty"`
	EyesClosed string `json:"eyes_closed,omitempty"`
}

// Persona は話者の定義（声・字幕色・立ち絵・立ち位置）を保持します。
type Persona struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	SubtitleColor string           `json:"subtitle_color"` // 16進カラーコード (#RRGGBB)
	VoiceID       int              `json:"voice_id"`       // TTS エンジンのスタイルID
	VoiceSpeed    float64          `json:"voice_speed,omitempty"`
	Images        *CharacterImages `json:"images,omitempty"`
	Position      string           `json:"position,omitempty"`  // 明示指定があれば宣言順より優先
	Animation     string           `json:"animation,omitempty"` // sway / bounce / static
}

// String は話者の情報を文字列で返すのだ。
func (p Persona) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}

// PersonasMap はIDをキーとした話者の検索用マップなのだ。
type PersonasMap map[string]Persona

// LoadPersonas は指定されたファイルパスからJSONを読み込み、宣言順の話者リストを返すのだ。
func LoadPersonas(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("話者設定ファイルの読み込みに失敗したのだ: %w", err)
	}
	return ParsePersonas(data)
}

// ParsePersonas はJSONバイト列から話者リストをパースして検証するのだ。
// IDの重複と未知のアニメーション指定は致命的エラーとして弾きます。
func ParsePersonas(data []byte) ([]Persona, error) {
	var personas []Persona
	if err := json.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("話者設定のデコードに失敗したのだ: %w", err)
	}

	seen := make(map[string]struct{}, len(personas))
	for i, p := range personas {
		if p.ID == "" {
			return nil, &InputValidationError{Field: fmt.Sprintf("personas[%d].id", i), Reason: "IDが空です"}
		}
		if _, dup := seen[p.ID]; dup {
			return nil, &InputValidationError{Field: "personas", Reason: fmt.Sprintf("IDが重複しています: %s", p.ID)}
		}
		seen[p.ID] = struct{}{}

		switch p.Animation {
		case "", AnimationSway, AnimationBounce, AnimationStatic:
		default:
			return nil, &InputValidationError{
				Field:  fmt.Sprintf("personas[%d].animation", i),
				Reason: fmt.Sprintf("未知のアニメーションです: %s", p.Animation),
			}
		}
		switch p.Position {
		case "", PositionLeft, PositionRight, PositionCenter:
		default:
			return nil, &InputValidationError{
				Field:  fmt.Sprintf("personas[%d].position", i),
				Reason: fmt.Sprintf("未知の立ち位置です: %s", p.Position),
			}
		}
	}
	return personas, nil
}

// BuildPersonasMap はスライス形式のデータを検索効率の良いマップ形式に変換するのだ。
func BuildPersonasMap(personas []Persona) PersonasMap {
	m := make(PersonasMap, len(personas))
	for _, p := range personas {
		m[p.ID] = p
	}
	return m
}

// DefaultPersona は未設定の話者参照に対するフォールバック先（先頭宣言の話者）を返します。
func DefaultPersona(personas []Persona) (Persona, bool) {
	if len(personas) == 0 {
		return Persona{}, false
	}
	return personas[0], true
}
