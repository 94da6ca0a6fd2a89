package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-movie-kit/pkg/domain"
	"github.com/shouni/go-movie-kit/pkg/kana"
)

const (
	// DefaultEngineURL はローカルで起動した VOICEVOX エンジンの既定URLです。
	DefaultEngineURL = "http://127.0.0.1:50021"

	queryCacheTTL   = 30 * time.Minute
	queryCacheSweep = 1 * time.Hour
	maxRetries      = 3
	initialBackoff  = 500 * time.Millisecond
)

// Client は VOICEVOX 互換エンジンの HTTP クライアントです。
// audio_query の結果は同一テキスト・同一話者についてキャッシュされるのだ。
type Client struct {
	baseURL    string
	httpClient *http.Client
	queryCache *cache.Cache
}

// NewClient は VOICEVOX クライアントを初期化するのだ。
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultEngineURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		queryCache: cache.New(queryCacheTTL, queryCacheSweep),
	}
}

// AudioQuery は合成用クエリを生成します。クエリはJSONオブジェクトのまま保持し、
// 話速などのパラメータは呼び出し側が上書きしてから Synthesize へ渡すのだ。
func (c *Client) AudioQuery(ctx context.Context, text string, speaker int) (map[string]any, error) {
	cacheKey := fmt.Sprintf("%d:%s", speaker, text)
	if cached, found := c.queryCache.Get(cacheKey); found {
		return cloneQuery(cached.(map[string]any)), nil
	}

	endpoint := fmt.Sprintf("%s/audio_query?text=%s&speaker=%d",
		c.baseURL, url.QueryEscape(text), speaker)

	body, err := c.postWithRetry(ctx, endpoint, nil, "application/json")
	if err != nil {
		return nil, fmt.Errorf("audio_query に失敗したのだ (url=%s): %w", endpoint, err)
	}

	var query map[string]any
	if err := json.Unmarshal(body, &query); err != nil {
		return nil, fmt.Errorf("audio_query 応答のデコードに失敗したのだ: %w", err)
	}

	c.queryCache.Set(cacheKey, cloneQuery(query), cache.DefaultExpiration)
	return query, nil
}

// Synthesize はクエリから WAV を合成します。
func (c *Client) Synthesize(ctx context.Context, query map[string]any, speaker int) ([]byte, error) {
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("合成クエリのエンコードに失敗したのだ: %w", err)
	}

	endpoint := fmt.Sprintf("%s/synthesis?speaker=%d", c.baseURL, speaker)
	data, err := c.postWithRetry(ctx, endpoint, payload, "application/json")
	if err != nil {
		return nil, fmt.Errorf("synthesis に失敗したのだ (url=%s): %w", endpoint, err)
	}
	return data, nil
}

// RegisterUserDictWord は発音辞書エントリをエンジンのユーザー辞書へ登録します。
func (c *Client) RegisterUserDictWord(ctx context.Context, entry kana.Entry) error {
	params := url.Values{}
	params.Set("surface", entry.Surface)
	params.Set("pronunciation", entry.Reading)
	params.Set("accent_type", strconv.Itoa(entry.Accent))
	params.Set("word_type", entry.WordClass)
	params.Set("priority", strconv.Itoa(entry.Priority))

	endpoint := fmt.Sprintf("%s/user_dict_word?%s", c.baseURL, params.Encode())
	if _, err := c.postWithRetry(ctx, endpoint, nil, "application/json"); err != nil {
		return fmt.Errorf("ユーザー辞書への登録に失敗したのだ (surface=%s): %w", entry.Surface, err)
	}
	return nil
}

// ProbeUserDict はエンジンがユーザー辞書に対応しているかを一度だけ調べるのだ。
// 起動時に呼んでケーパビリティフラグへ固定し、呼び出しごとの再探索はしません。
func (c *Client) ProbeUserDict(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user_dict", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// postWithRetry は指数バックオフ付きで POST を実行し、レスポンスボディを返すのだ。
func (c *Client) postWithRetry(ctx context.Context, endpoint string, payload []byte, contentType string) ([]byte, error) {
	var result []byte

	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("エンジンがエラーを返したのだ: status=%d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			// 4xx はリトライしても結果が変わらないので即座に諦めるのだ
			return backoff.Permanent(fmt.Errorf("エンジンが拒否したのだ: status=%d body=%s", resp.StatusCode, truncate(body, 200)))
		}
		result = body
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(), maxRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return result, nil
}

func newExponentialBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoff
	return b
}

func cloneQuery(src map[string]any) map[string]any {
	copied := make(map[string]any, len(src))
	for k, v := range src {
		copied[k] = v
	}
	return copied
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}

// PersonaSynthesizer は1話者の声設定を束ねた Synthesizer 実装です。
type PersonaSynthesizer struct {
	client          *Client
	persona         domain.Persona
	userDictEnabled bool
}

// NewPersonaSynthesizer は話者設定とケーパビリティフラグを固定して生成するのだ。
func NewPersonaSynthesizer(client *Client, persona domain.Persona, userDictEnabled bool) *PersonaSynthesizer {
	return &PersonaSynthesizer{
		client:          client,
		persona:         persona,
		userDictEnabled: userDictEnabled,
	}
}

// Synthesize はテキストを合成し、WAVデータと実測の長さを返します。
func (s *PersonaSynthesizer) Synthesize(ctx context.Context, text string) (*Result, error) {
	query, err := s.client.AudioQuery(ctx, text, s.persona.VoiceID)
	if err != nil {
		return nil, err
	}
	if s.persona.VoiceSpeed > 0 {
		query["speedScale"] = s.persona.VoiceSpeed
	}

	data, err := s.client.Synthesize(ctx, query, s.persona.VoiceID)
	if err != nil {
		return nil, err
	}

	duration, err := WAVDuration(data)
	if err != nil {
		return nil, fmt.Errorf("合成結果の長さ計測に失敗したのだ (persona=%s): %w", s.persona.ID, err)
	}
	return &Result{Data: data, Duration: duration}, nil
}

// RegisterWord は発音辞書エントリをエンジンへ登録します。
func (s *PersonaSynthesizer) RegisterWord(ctx context.Context, entry kana.Entry) error {
	return s.client.RegisterUserDictWord(ctx, entry)
}

// SupportsUserDict は起動時に解決済みのケーパビリティフラグを返すのだ。
func (s *PersonaSynthesizer) SupportsUserDict() bool {
	return s.userDictEnabled
}
