// Package collect drives a browser session against the chat application and
// records its answers in the input-table format the evaluator consumes. It
// is environment-specific glue: the grading engine only ever sees the rows
// it emits.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/mingqiu/gradecheck/internal/model"
	"github.com/mingqiu/gradecheck/internal/worker"
)

// UI selectors for the chat application.
const (
	selUsername = `input[name="username"]`
	selPassword = `input[name="password"]`
	selLogin    = `button[type="submit"]`
	selNewChat  = `[data-action="new-chat"]`
	selUpload   = `input[type="file"]`
	selComposer = `textarea`
	selSend     = `[data-action="send"]`
)

// Collector runs questions through the chat app and persists the replies.
type Collector struct {
	cfg     model.CollectorConfig
	limiter *worker.Limiter
	client  *http.Client
	verbose bool
}

// New creates a Collector.
func New(cfg model.CollectorConfig, verbose bool) *Collector {
	return &Collector{
		cfg:     cfg,
		limiter: worker.NewLimiter(cfg.RatePerSec, 1),
		client:  &http.Client{Timeout: 30 * time.Second},
		verbose: verbose,
	}
}

// Run executes every task and appends one row per question to outPath.
// A question whose reply never arrives still emits a row with an empty
// answer; the evaluator's empty-answer diagnostic covers it. Failures are
// logged and never corrupt rows already written.
func (c *Collector) Run(ctx context.Context, tasks []Task, outPath string) error {
	if len(tasks) == 0 {
		return fmt.Errorf("no tasks to collect")
	}

	writer, err := NewRowWriter(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = writer.Close() }()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.cfg.Headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := c.login(browserCtx); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	for _, group := range groupByFile(tasks) {
		if err := c.startSession(browserCtx, group.file); err != nil {
			c.logf("session for %s failed: %v, skipping %d question(s)", group.file, err, len(group.tasks))
			continue
		}
		for i, task := range group.tasks {
			row, err := c.ask(browserCtx, task)
			if err != nil {
				c.logf("question %q failed: %v, recording empty answer", task.Question, err)
				row = Row{
					ID:       fmt.Sprintf("%s_%d", group.file, i+1),
					Role:     "assistant",
					FileName: task.FileName,
					Expected: task.Expected,
				}
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("persist row: %w", err)
			}
		}
	}
	return nil
}

// login authenticates through the web UI and waits for the chat composer.
func (c *Collector) login(ctx context.Context) error {
	c.logf("logging in at %s", c.cfg.BaseURL)
	return chromedp.Run(ctx,
		chromedp.Navigate(c.cfg.BaseURL),
		chromedp.WaitVisible(selUsername, chromedp.ByQuery),
		chromedp.SendKeys(selUsername, c.cfg.Username, chromedp.ByQuery),
		chromedp.SendKeys(selPassword, c.cfg.Password, chromedp.ByQuery),
		chromedp.Click(selLogin, chromedp.ByQuery),
		chromedp.WaitVisible(selComposer, chromedp.ByQuery),
	)
}

// startSession opens a fresh chat bound to the given workbook.
func (c *Collector) startSession(ctx context.Context, fileName string) error {
	c.logf("starting session for %s", fileName)
	actions := []chromedp.Action{
		chromedp.Click(selNewChat, chromedp.ByQuery),
		chromedp.WaitVisible(selComposer, chromedp.ByQuery),
	}
	if fileName != "" {
		actions = append(actions,
			chromedp.SetUploadFiles(selUpload, []string{fileName}, chromedp.ByQuery),
			chromedp.Sleep(2*time.Second), // let the upload register
		)
	}
	return chromedp.Run(ctx, actions...)
}

// ask submits one question and polls the history endpoint for the reply.
func (c *Collector) ask(ctx context.Context, task Task) (Row, error) {
	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(selComposer, chromedp.ByQuery),
		chromedp.SendKeys(selComposer, task.Question, chromedp.ByQuery),
		chromedp.Click(selSend, chromedp.ByQuery),
	); err != nil {
		return Row{}, fmt.Errorf("send question: %w", err)
	}

	var chatID, token string
	if err := chromedp.Run(ctx,
		chromedp.Evaluate(`location.pathname.split('/').filter(Boolean).pop() || ""`, &chatID),
		chromedp.Evaluate(`window.localStorage.getItem('access_token') || ""`, &token),
	); err != nil {
		return Row{}, fmt.Errorf("read session state: %w", err)
	}
	if token == "" {
		return Row{}, fmt.Errorf("no access_token in localStorage")
	}

	pollCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	msg, err := c.pollReply(pollCtx, chatID, token)
	if err != nil {
		return Row{}, err
	}

	return Row{
		ID:        msg.ID,
		Role:      msg.Role,
		Content:   FlattenHTML(msg.Content),
		Timestamp: msg.Timestamp,
		FileName:  task.FileName,
		Expected:  task.Expected,
	}, nil
}

type historyMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type historyResponse struct {
	Messages []historyMessage `json:"messages"`
}

// pollReply fetches the chat history until an assistant reply shows up or
// the retry budget runs out.
func (c *Collector) pollReply(ctx context.Context, chatID, token string) (historyMessage, error) {
	endpoint := fmt.Sprintf("%s/history/message?uuid=%s",
		strings.TrimRight(c.cfg.APIBase, "/"), url.QueryEscape(chatID))

	var lastErr error
	for attempt := 1; attempt <= c.cfg.PollRetries; attempt++ {
		if err := c.limiter.WaitWithDelay(ctx, c.cfg.PollDelay); err != nil {
			return historyMessage{}, err
		}
		c.logf("polling chat history (attempt %d/%d)", attempt, c.cfg.PollRetries)

		msg, err := c.fetchLatestReply(ctx, endpoint, token)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}
	return historyMessage{}, fmt.Errorf("no reply after %d attempts: %w", c.cfg.PollRetries, lastErr)
}

// fetchLatestReply performs one history request and returns the newest
// assistant message with content.
func (c *Collector) fetchLatestReply(ctx context.Context, endpoint, token string) (historyMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return historyMessage{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return historyMessage{}, fmt.Errorf("fetch history: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return historyMessage{}, fmt.Errorf("history status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return historyMessage{}, fmt.Errorf("read history: %w", err)
	}

	var hist historyResponse
	if err := json.Unmarshal(body, &hist); err != nil {
		return historyMessage{}, fmt.Errorf("decode history: %w", err)
	}

	for i := len(hist.Messages) - 1; i >= 0; i-- {
		msg := hist.Messages[i]
		if msg.Role == "assistant" && strings.TrimSpace(msg.Content) != "" {
			return msg, nil
		}
	}
	return historyMessage{}, fmt.Errorf("no assistant reply yet")
}

// fileGroup keeps the questions of one workbook in submission order.
type fileGroup struct {
	file  string
	tasks []Task
}

// groupByFile batches tasks per workbook, preserving first-seen file order.
func groupByFile(tasks []Task) []fileGroup {
	var groups []fileGroup
	index := make(map[string]int)
	for _, t := range tasks {
		i, ok := index[t.FileName]
		if !ok {
			i = len(groups)
			index[t.FileName] = i
			groups = append(groups, fileGroup{file: t.FileName})
		}
		groups[i].tasks = append(groups[i].tasks, t)
	}
	return groups
}

func (c *Collector) logf(format string, args ...interface{}) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, ">>> "+format+"\n", args...)
	}
}
