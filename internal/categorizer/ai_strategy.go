package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rbc2mm/internal/caterror"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
)

// AIStrategyName is the configuration value and result source of AIStrategy.
const AIStrategyName = "ai"

// AIOptions bounds the calls AIStrategy makes.
type AIOptions struct {
	MaxAttempts       uint
	RetryDelay        time.Duration
	Timeout           time.Duration // per call
	RequestsPerMinute int           // 0 disables rate limiting
}

// DefaultAIOptions returns the limits used when none are configured.
func DefaultAIOptions() AIOptions {
	return AIOptions{
		MaxAttempts:       3,
		RetryDelay:        time.Second,
		Timeout:           30 * time.Second,
		RequestsPerMinute: 10,
	}
}

// AIStrategy asks a generative model for the triple.
type AIStrategy struct {
	client   AIClient
	taxonomy Taxonomy
	opts     AIOptions
	limiter  *rate.Limiter
	logger   logging.Logger
}

// NewAIStrategy creates a new AIStrategy instance. A nil client makes every
// call fail as unavailable.
func NewAIStrategy(client AIClient, taxonomy Taxonomy, opts AIOptions, logger logging.Logger) *AIStrategy {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 1
	}
	s := &AIStrategy{
		client:   client,
		taxonomy: taxonomy,
		opts:     opts,
		logger:   logger,
	}
	if opts.RequestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return s
}

// Name returns the name of this strategy for logging and debugging.
func (s *AIStrategy) Name() string {
	return AIStrategyName
}

// Confirmed is false: generative answers are not human-checked.
func (s *AIStrategy) Confirmed() bool {
	return false
}

// Resolve builds the prompt, calls the model with retry and parses the
// three-line reply. Malformed replies are not retried.
func (s *AIStrategy) Resolve(ctx context.Context, tx Transaction) (Answer, error) {
	if s.client == nil {
		return Answer{}, caterror.Unavailable(s.Name(), errors.New("AI client not configured (is GEMINI_API_KEY set?)"))
	}

	taxonomyText := ""
	if s.taxonomy != nil {
		taxonomyText = s.taxonomy.Text()
	}
	prompt := BuildPrompt(tx.Desc1, tx.Desc2, taxonomyText)

	var response string
	err := retry.Do(
		func() error {
			reply, err := s.call(ctx, prompt)
			if err != nil {
				return err
			}
			response = reply
			return nil
		},
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil
		}),
		retry.Attempts(s.opts.MaxAttempts),
		retry.Delay(s.opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.WithError(err).Warn("AI call failed, retrying",
				logging.Field{Key: logging.FieldAttempt, Value: n + 1},
				logging.Field{Key: logging.FieldDesc1, Value: tx.Desc1})
		}),
	)
	if err != nil {
		return Answer{}, caterror.Unavailable(s.Name(), err)
	}

	triple, err := ParseTriple(response)
	if err != nil {
		var fbErr *caterror.FallbackError
		if errors.As(err, &fbErr) {
			fbErr.Strategy = s.Name()
		}
		return Answer{}, err
	}

	if triple.Category == models.CategoryOther && triple.Subcategory != "" {
		s.logger.Warn("AI returned Other with a subcategory",
			logging.Field{Key: logging.FieldSubcategory, Value: triple.Subcategory},
			logging.Field{Key: logging.FieldDesc1, Value: tx.Desc1})
	}

	if s.taxonomy != nil && triple.Category != models.CategoryOther && !s.taxonomy.Contains(triple.Category) {
		s.logger.Warn("AI returned a category outside the taxonomy",
			logging.Field{Key: logging.FieldCategory, Value: triple.Category},
			logging.Field{Key: logging.FieldDesc1, Value: tx.Desc1})
	}

	s.logger.Debug("Transaction categorized using AI",
		logging.Field{Key: logging.FieldDesc1, Value: tx.Desc1},
		logging.Field{Key: logging.FieldCategory, Value: triple.Category},
		logging.Field{Key: logging.FieldSubcategory, Value: triple.Subcategory},
		logging.Field{Key: logging.FieldNote, Value: triple.Note})
	return Answer{Triple: triple}, nil
}

// call makes one rate-limited model call bounded by the per-call timeout.
func (s *AIStrategy) call(ctx context.Context, prompt string) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	callCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	reply, err := s.client.Complete(callCtx, prompt)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("AI call timed out after %s: %w", s.opts.Timeout, err)
		}
		return "", err
	}
	return reply, nil
}

// BuildPrompt renders the categorization prompt. An absent second
// description is written as "None".
func BuildPrompt(desc1 string, desc2 *string, taxonomy string) string {
	second := "None"
	if desc2 != nil {
		second = *desc2
	}

	var b strings.Builder
	fmt.Fprintf(&b, "For the following description of transaction:\n%s; %s\n\n", desc1, second)
	fmt.Fprintf(&b, "Choose the category and subcategory from the following list:\n%s\n\n", strings.TrimRight(taxonomy, "\n"))
	b.WriteString("Next, put the vendor. Separate each of these answers by a new line.\n")
	b.WriteString("If the description does not give enough information, answer Other as the category and leave the subcategory line empty.\n")
	b.WriteString("Example: for the transaction HAPPY BURGER TORONTO ON, your output should look exactly like this:\n")
	b.WriteString("Food\nLunch\nHappy Burger\n")
	return b.String()
}

// ParseTriple validates a three-line model reply: category, subcategory
// (may be empty), note. One trailing newline and any blank lines after the
// third are ignored. Anything else is a FallbackMalformed error.
func ParseTriple(response string) (models.Triple, error) {
	body := strings.ReplaceAll(response, "\r\n", "\n")
	if strings.TrimSpace(body) == "" {
		return models.Triple{}, caterror.Malformed(AIStrategyName, response, "empty response")
	}

	body = strings.TrimSuffix(body, "\n")
	lines := strings.Split(body, "\n")
	for len(lines) > 3 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) != 3 {
		return models.Triple{}, caterror.Malformed(AIStrategyName, response,
			fmt.Sprintf("expected 3 lines, got %d", len(lines)))
	}

	triple := models.Triple{
		Category:    strings.TrimSpace(lines[0]),
		Subcategory: strings.TrimSpace(lines[1]),
		Note:        strings.TrimSpace(lines[2]),
	}
	if triple.Category == "" {
		return models.Triple{}, caterror.Malformed(AIStrategyName, response, "empty category")
	}
	return triple, nil
}
