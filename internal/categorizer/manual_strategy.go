package categorizer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rbc2mm/internal/caterror"
	"rbc2mm/internal/currencyutils"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"
)

// ManualStrategyName is the configuration value and result source of
// ManualStrategy.
const ManualStrategyName = "manual"

// ManualStrategy asks the user at a terminal. Answers are confirmed by a
// human and therefore always learned.
type ManualStrategy struct {
	in       *bufio.Reader
	out      io.Writer
	taxonomy Taxonomy
	logger   logging.Logger
}

// NewManualStrategy reads answers from in and writes prompts to out.
func NewManualStrategy(in io.Reader, out io.Writer, taxonomy Taxonomy, logger logging.Logger) *ManualStrategy {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &ManualStrategy{
		in:       bufio.NewReader(in),
		out:      out,
		taxonomy: taxonomy,
		logger:   logger,
	}
}

// Name returns the name of this strategy for logging and debugging.
func (s *ManualStrategy) Name() string {
	return ManualStrategyName
}

// Confirmed is true: every answer was typed by the user.
func (s *ManualStrategy) Confirmed() bool {
	return true
}

// Resolve shows the transaction and the taxonomy and reads category,
// subcategory, note and optional pattern edits. The category may be given
// by name or by its number in the printed list. Closed input makes the
// strategy unavailable.
func (s *ManualStrategy) Resolve(ctx context.Context, tx Transaction) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, caterror.Unavailable(s.Name(), err)
	}

	s.printTransaction(tx)
	categories := s.printCategories()

	var answer Answer
	var err error
	for answer.Category == "" {
		var line string
		if line, err = s.ask("Category"); err != nil {
			return Answer{}, caterror.Unavailable(s.Name(), err)
		}
		answer.Category = pickCategory(line, categories)
		if answer.Category == "" {
			fmt.Fprintln(s.out, "A category is required.")
		}
	}

	if answer.Category != models.CategoryOther {
		if answer.Subcategory, err = s.ask("Subcategory"); err != nil {
			return Answer{}, caterror.Unavailable(s.Name(), err)
		}
	}
	if answer.Note, err = s.ask("Note"); err != nil {
		return Answer{}, caterror.Unavailable(s.Name(), err)
	}

	if answer.Pattern1, err = s.ask(fmt.Sprintf("Description 1 pattern [%s]", tx.Desc1)); err != nil {
		return Answer{}, caterror.Unavailable(s.Name(), err)
	}
	if answer.Pattern2, err = s.ask(fmt.Sprintf("Description 2 pattern [%s]", tx.Desc2Text())); err != nil {
		return Answer{}, caterror.Unavailable(s.Name(), err)
	}

	if s.taxonomy != nil && answer.Category != models.CategoryOther && !s.taxonomy.Contains(answer.Category) {
		s.logger.Warn("Category is not part of the taxonomy",
			logging.Field{Key: logging.FieldCategory, Value: answer.Category})
	}
	return answer, nil
}

func (s *ManualStrategy) printTransaction(tx Transaction) {
	desc2 := tx.Desc2Text()
	if tx.Desc2 == nil {
		desc2 = "(none)"
	}
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Uncategorized transaction")
	fmt.Fprintf(s.out, "  Date:          %s\n", tx.Date.Format("2006/01/02"))
	fmt.Fprintf(s.out, "  Account:       %s\n", tx.Account)
	fmt.Fprintf(s.out, "  Amount:        %s %s\n", currencyutils.FormatAmount(tx.Amount, ""), tx.Tag)
	fmt.Fprintf(s.out, "  Description 1: %s\n", tx.Desc1)
	fmt.Fprintf(s.out, "  Description 2: %s\n", desc2)
}

func (s *ManualStrategy) printCategories() []string {
	if s.taxonomy == nil {
		return nil
	}
	categories := s.taxonomy.Categories()
	for i, c := range categories {
		subs := s.taxonomy.Subcategories(c)
		if len(subs) == 0 {
			fmt.Fprintf(s.out, "  %2d) %s\n", i+1, c)
			continue
		}
		fmt.Fprintf(s.out, "  %2d) %s: %s\n", i+1, c, strings.Join(subs, ", "))
	}
	return categories
}

func (s *ManualStrategy) ask(label string) (string, error) {
	fmt.Fprintf(s.out, "%s: ", label)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// pickCategory resolves a typed answer: a list number selects that
// category, anything else is taken as the category name.
func pickCategory(input string, categories []string) string {
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(categories) {
			return categories[n-1]
		}
		return ""
	}
	return input
}
