package datestr

// Complement tokenizes each fragment independently and then fills every
// resulting map with directives that other fragments matched but it did not.
// A map's own matches are never overwritten. Sites routinely split one
// logical date across text nodes (a "12" day node next to an "October 2017"
// node); this lets each fragment borrow the rest from its siblings.
//
// When several other fragments supply the same missing directive the first
// one in fragment order wins. That order-dependency is inherited behavior
// and is kept as-is.
func Complement(t *Table, fragments []string, order []Term) ([]DirectiveMap, error) {
	tokenized := make([]DirectiveMap, 0, len(fragments))
	for _, fragment := range fragments {
		m, err := Tokenize(t, fragment, order)
		if err != nil {
			return nil, err
		}
		tokenized = append(tokenized, m)
	}

	completed := make([]DirectiveMap, 0, len(tokenized))
	for i, own := range tokenized {
		merged := make(DirectiveMap, len(own))
		for d, v := range own {
			merged[d] = v
		}
		for j, other := range tokenized {
			if i == j {
				continue
			}
			for d, v := range other {
				if _, ok := merged[d]; !ok {
					merged[d] = v
				}
			}
		}
		completed = append(completed, merged)
	}

	return completed, nil
}
