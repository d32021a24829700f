package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/ctu-developers/DSpace/internal/repository"
)

// Confidence of a name lookup
type Confidence string

const (
	ConfidenceNotFound  Confidence = "notfound"
	ConfidenceUncertain Confidence = "uncertain"
	ConfidenceAmbiguous Confidence = "ambiguous"
)

// Choice is one suggested person for a name field
type Choice struct {
	Authority string `json:"authority"`
	Label     string `json:"label"`
	Value     string `json:"value"`
}

// Choices is a window of suggestions for a name lookup
type Choices struct {
	Values     []Choice   `json:"values"`
	Start      int        `json:"start"`
	Total      int        `json:"total"`
	Confidence Confidence `json:"confidence"`
	More       bool       `json:"more"`
}

// ChoiceService suggests authority persons for free-text author names
type ChoiceService struct {
	store repository.Store
}

func NewChoiceService(store repository.Store) *ChoiceService {
	return &ChoiceService{store: store}
}

type personQuery func(ctx context.Context, persons repository.PersonRepository) (repository.Iterator[*domain.AuthorityPerson], error)

// Matches looks persons up by name, trying exact matches before substring
// matches. Each person is suggested once.
func (s *ChoiceService) Matches(ctx context.Context, principal *domain.Principal, text string, start, limit int) (*Choices, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if start < 0 {
		start = 0
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	name := NormalizeName(text)
	last, first, ok := SplitName(name)
	if !ok {
		last = name
	}
	fullName := strings.Join(strings.Fields(strings.ReplaceAll(name, ",", " ")), " ")

	queries := []personQuery{
		func(ctx context.Context, p repository.PersonRepository) (repository.Iterator[*domain.AuthorityPerson], error) {
			return p.FindByName(ctx, first, last)
		},
		func(ctx context.Context, p repository.PersonRepository) (repository.Iterator[*domain.AuthorityPerson], error) {
			return p.FindByName(ctx, last, first)
		},
		func(ctx context.Context, p repository.PersonRepository) (repository.Iterator[*domain.AuthorityPerson], error) {
			return p.FindLikeName(ctx, last, first)
		},
		func(ctx context.Context, p repository.PersonRepository) (repository.Iterator[*domain.AuthorityPerson], error) {
			return p.FindLikeName(ctx, first, last)
		},
		func(ctx context.Context, p repository.PersonRepository) (repository.Iterator[*domain.AuthorityPerson], error) {
			return p.FindLikeFullName(ctx, fullName)
		},
	}

	result := &Choices{Values: []Choice{}, Start: start}
	err := withSession(ctx, s.store, "Matches", text, principal, func(sess repository.Session) error {
		m := &matcher{start: start, limit: limit, seen: make(map[int64]struct{})}
		for _, query := range queries {
			it, err := query(ctx, sess.Persons())
			if err != nil {
				return err
			}
			if err := m.consume(it); err != nil {
				return err
			}
			if m.more {
				break
			}
		}

		for _, p := range m.window {
			result.Values = append(result.Values, Choice{Authority: p.UID, Label: p.Name(), Value: p.Name()})
		}
		result.Total = m.total
		result.More = m.more
		result.Confidence = confidenceOf(m.total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Label returns the display name of the person with the given uid
func (s *ChoiceService) Label(ctx context.Context, principal *domain.Principal, uid string) (string, error) {
	var label string
	err := withSession(ctx, s.store, "Label", uid, principal, func(sess repository.Session) error {
		person, err := findPerson(ctx, sess, uid)
		if err != nil {
			return err
		}
		label = person.Name()
		return nil
	})
	return label, err
}

// matcher accumulates unique persons across several cursors
type matcher struct {
	start  int
	limit  int
	seen   map[int64]struct{}
	window []*domain.AuthorityPerson
	total  int
	more   bool
}

// consume drains it until the window is full and one further unique person
// proves there are more. That person is counted in total. it is always closed.
func (m *matcher) consume(it repository.Iterator[*domain.AuthorityPerson]) (err error) {
	defer func() {
		if closeErr := it.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for it.Next() {
		p := it.Value()
		if _, dup := m.seen[p.ID]; dup {
			continue
		}
		m.seen[p.ID] = struct{}{}

		if m.total >= m.start+m.limit {
			m.total++
			m.more = true
			return nil
		}
		if m.total >= m.start {
			m.window = append(m.window, p)
		}
		m.total++
	}
	return it.Err()
}

func confidenceOf(total int) Confidence {
	switch total {
	case 0:
		return ConfidenceNotFound
	case 1:
		return ConfidenceUncertain
	default:
		return ConfidenceAmbiguous
	}
}

// NormalizeName brings "jan novak" and "novak, jan" style input into
// "Jan, Novak" and "Novak, Jan". Other input is returned trimmed.
func NormalizeName(text string) string {
	text = strings.TrimSpace(text)

	if strings.Count(text, ",") == 1 {
		before, after, _ := strings.Cut(text, ",")
		return capitalize(strings.TrimSpace(before)) + ", " + capitalize(strings.TrimSpace(after))
	}
	if !strings.Contains(text, ",") {
		if parts := strings.Fields(text); len(parts) == 2 {
			return capitalize(parts[0]) + ", " + capitalize(parts[1])
		}
	}
	return text
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
