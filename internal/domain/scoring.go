package domain

// Score computes accuracy over every drilled field of a session.
// Verbs are reported in quiz order, and only when they have mistakes.
func Score(s *Session) (Result, error) {
	sel := s.Selection()
	if len(sel.Tenses) == 0 {
		return Result{}, ErrEmptyTenses
	}
	if len(sel.Persons) == 0 {
		return Result{}, ErrEmptyPersons
	}
	totalFields := s.TotalQuestions * sel.Fields()
	if totalFields == 0 {
		return Result{}, ErrNoVerbs
	}

	result := Result{
		TotalQuestions: s.TotalQuestions,
		TotalFields:    totalFields,
		Mistakes:       s.Mistakes,
		Accuracy:       (1 - float64(s.Mistakes)/float64(totalFields)) * 100,
		PerVerb:        []VerbMistakes{},
	}
	for _, inf := range s.VerbInfinitives {
		if n := s.PerVerbMistakes[inf]; n > 0 {
			result.PerVerb = append(result.PerVerb, VerbMistakes{Infinitive: inf, Mistakes: n})
		}
	}
	result.Perfect = len(result.PerVerb) == 0
	return result, nil
}
