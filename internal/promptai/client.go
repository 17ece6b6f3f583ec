// Package promptai реализует клиент генеративного текстового сервиса
// (улучшение промпта, подсказки) и построение ссылок на сервис рендера
// изображений по промпту. Оба сервиса для приложения непрозрачны:
// первый возвращает текст, второй — URL готового изображения.
package promptai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Размеры обоев под мобильный экран.
const (
	WallpaperWidth  = 1080
	WallpaperHeight = 1920
)

var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// Client — клиент генеративного сервиса.
type Client struct {
	apiKey     string
	model      string
	apiURL     string
	renderURL  string
	httpClient *http.Client
}

// NewClient создаёт новый клиент генеративного сервиса.
func NewClient(apiKey, model, renderURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		apiURL:     "https://generativelanguage.googleapis.com/v1beta",
		renderURL:  strings.TrimSuffix(renderURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Model возвращает имя используемой генеративной модели.
func (c *Client) Model() string {
	return c.model
}

// Enabled сообщает, сконфигурирован ли ключ генеративного сервиса.
// Без ключа генерация работает на исходном промпте без улучшения.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	const op = "promptai.generate"

	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.apiURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var genResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s: empty response", op)
	}
	return strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text), nil
}

// EnhancePrompt просит модель превратить пользовательский промпт
// в детальное описание обоев. Возвращает только текст промпта.
func (c *Client) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	instruction := fmt.Sprintf(
		"As an AI wallpaper expert, refine this prompt into a highly detailed description "+
			"for a stunning wallpaper: %q. Return ONLY the refined prompt text, no headers or meta-talk.",
		prompt)
	return c.generate(ctx, instruction)
}

// SuggestPrompts просит модель вернуть пять промптов в виде JSON-массива строк
// и разбирает ответ. Ошибка разбора отдаётся вызывающему — он решает,
// чем её заменить.
func (c *Client) SuggestPrompts(ctx context.Context, basePrompt string) ([]string, error) {
	const op = "promptai.SuggestPrompts"
	if basePrompt == "" {
		basePrompt = "wallpapers"
	}
	instruction := fmt.Sprintf(
		"Based on the user's interest in %q, suggest 5 creative and diverse wallpaper prompts. "+
			"Each prompt should be detailed and visually descriptive. Format the response as a JSON "+
			`array of strings, like: ["prompt1", "prompt2", "prompt3", "prompt4", "prompt5"]`,
		basePrompt)

	text, err := c.generate(ctx, instruction)
	if err != nil {
		return nil, err
	}

	suggestions, err := parseSuggestions(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return suggestions, nil
}

// parseSuggestions вытаскивает JSON-массив из ответа модели; если массива
// нет — разбирает построчно, снимая маркеры списков и кавычки.
func parseSuggestions(text string) ([]string, error) {
	if raw := jsonArrayRe.FindString(text); raw != "" {
		var suggestions []string
		if err := json.Unmarshal([]byte(raw), &suggestions); err == nil && len(suggestions) > 0 {
			return suggestions, nil
		}
	}

	var suggestions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "-*0123456789. ")
		line = strings.Trim(line, `"'`)
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == 5 {
			break
		}
	}
	if len(suggestions) == 0 {
		return nil, errors.New("no suggestions in model reply")
	}
	return suggestions, nil
}

// RenderImageURL строит ссылку сервиса рендера, превращающего промпт
// в готовое изображение нужного размера.
func (c *Client) RenderImageURL(prompt string, width, height int) string {
	seed := rand.Intn(1000000)
	return fmt.Sprintf("%s/%s?width=%d&height=%d&seed=%d&nologo=true",
		c.renderURL, url.PathEscape(prompt), width, height, seed)
}
