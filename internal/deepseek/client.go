package deepseek

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Client talks to the completion service over HTTP. Streaming responses use
// server-sent events.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a completion service client. The client carries no
// request timeout: streaming completions are unbounded and cancellation
// happens through the context.
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// CreateChat creates a new server-side conversation and returns its id.
func (c *Client) CreateChat(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, "/chat/create", map[string]any{}, &out); err != nil {
		return "", fmt.Errorf("failed to create chat: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("chat create response missing id")
	}

	c.logger.Debug("created chat", zap.String("chatId", out.ID))
	return out.ID, nil
}

// ResumeChat looks up an existing conversation and returns the id of its
// last committed assistant message, or nil when the conversation is empty.
func (c *Client) ResumeChat(ctx context.Context, chatID string) (*int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chat/"+chatID, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to resume chat %s: %w", chatID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("resume chat %s: HTTP %d: %s", chatID, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		ID            string `json:"id"`
		LastMessageID *int64 `json:"last_message_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode chat %s: %w", chatID, err)
	}

	c.logger.Debug("resumed chat",
		zap.String("chatId", chatID),
		zap.Int64p("lastMessageId", out.LastMessageID),
	)
	return out.LastMessageID, nil
}

// StreamCompletion issues a streaming completion call. The returned channel
// yields thinking fragments, content fragments, and exactly one final
// message, always last, after which the channel is closed. Transport faults
// are delivered as the terminal event with Err set. Cancelling the context
// aborts the underlying request.
func (c *Client) StreamCompletion(ctx context.Context, request Request) (<-chan StreamEvent, error) {
	payload := map[string]any{
		"chat_session_id":  request.ChatID,
		"prompt":           request.Prompt,
		"search_enabled":   request.Search,
		"thinking_enabled": request.Thinking,
	}
	if request.ParentID != nil {
		payload["parent_message_id"] = *request.ParentID
	} else {
		payload["parent_message_id"] = nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completion", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("completion request: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	events := make(chan StreamEvent)
	go c.consumeStream(ctx, resp.Body, events)

	return events, nil
}

// sseChunk is the wire form of one stream event.
type sseChunk struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	MessageID *int64 `json:"message_id"`
}

// consumeStream reads SSE lines from the response body and translates them
// into tagged chunks. Content fragments are accumulated so that the final
// message always carries the full text even when the service sends an empty
// terminal event. Every send races against ctx so an abandoned stream never
// strands this goroutine on the channel.
func (c *Client) consumeStream(ctx context.Context, body io.ReadCloser, events chan<- StreamEvent) {
	defer close(events)
	defer body.Close()

	send := func(event StreamEvent) bool {
		select {
		case events <- event:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var content strings.Builder

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk sseChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			c.logger.Debug("skipping malformed stream chunk", zap.String("data", data))
			continue
		}

		switch chunk.Type {
		case "thinking":
			if !send(StreamEvent{Chunk: Chunk{Kind: ChunkThinking, Text: chunk.Content}}) {
				return
			}
		case "content":
			content.WriteString(chunk.Content)
			if !send(StreamEvent{Chunk: Chunk{Kind: ChunkContent, Text: chunk.Content}}) {
				return
			}
		case "message":
			text := chunk.Content
			if text == "" {
				text = content.String()
			}
			send(StreamEvent{Chunk: Chunk{
				Kind:    ChunkFinal,
				Message: &Message{ID: chunk.MessageID, Content: text},
			}})
			return
		default:
			c.logger.Debug("ignoring unknown stream chunk type", zap.String("type", chunk.Type))
		}
	}

	if err := scanner.Err(); err != nil {
		send(StreamEvent{Err: fmt.Errorf("completion stream read failed: %w", err)})
		return
	}

	send(StreamEvent{Err: fmt.Errorf("completion stream ended without a final message")})
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}
