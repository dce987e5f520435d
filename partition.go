package obb

import "fmt"

// partitionGroup splits a group's surfaces by visibility, preserving
// each sub-list's relative order. Encrypted surfaces are gathered so
// they can be sealed as one combined blob (a single AEAD call per
// envelope); redacted surfaces contribute only their index.
func partitionGroup(g *SurfaceGroup) (public, encrypted []Surface, redacted []int) {
	for i := range g.Surfaces {
		s := g.Surfaces[i]
		switch s.Visibility.orPublic() {
		case VisibilityEncrypted:
			encrypted = append(encrypted, s)
		case VisibilityRedacted:
			redacted = append(redacted, s.SurfaceNumber)
		default:
			public = append(public, s)
		}
	}
	return public, encrypted, redacted
}

// visibilityPlan records the declared visibility of every surface in
// group order.
func visibilityPlan(g *SurfaceGroup) []planEntry {
	plan := make([]planEntry, len(g.Surfaces))
	for i := range g.Surfaces {
		plan[i] = planEntry{
			Index:      g.Surfaces[i].SurfaceNumber,
			Visibility: g.Surfaces[i].Visibility.orPublic(),
		}
	}
	return plan
}

// mergeGroup reassembles a selectively encrypted group from its three
// sources, checked against the signed visibility plan. Every plan
// index must be satisfied by exactly one source of the declared kind,
// and no source may contribute an index outside the plan. Redacted
// indices become canonical placeholders carrying only the index.
func mergeGroup(ct *cleartext, public, decrypted []Surface, redacted []int) (*SurfaceGroup, error) {
	want := make(map[int]Visibility, len(ct.VisibilityPlan))
	for _, e := range ct.VisibilityPlan {
		if _, dup := want[e.Index]; dup {
			return nil, fmt.Errorf("%w: index %d listed twice in visibility plan", ErrIndexIntegrity, e.Index)
		}
		want[e.Index] = e.Visibility.orPublic()
	}

	surfaces := make([]Surface, 0, len(want))
	satisfied := make(map[int]bool, len(want))

	take := func(s Surface, kind Visibility) error {
		v, ok := want[s.SurfaceNumber]
		if !ok {
			return fmt.Errorf("%w: surface %d not in visibility plan", ErrIndexIntegrity, s.SurfaceNumber)
		}
		if v != kind {
			return fmt.Errorf("%w: surface %d is %s in plan but stored as %s", ErrIndexIntegrity, s.SurfaceNumber, v, kind)
		}
		if satisfied[s.SurfaceNumber] {
			return fmt.Errorf("%w: surface %d supplied twice", ErrIndexIntegrity, s.SurfaceNumber)
		}
		satisfied[s.SurfaceNumber] = true
		surfaces = append(surfaces, s)
		return nil
	}

	for _, s := range public {
		if err := take(s, VisibilityPublic); err != nil {
			return nil, err
		}
	}
	for _, s := range decrypted {
		if err := take(s, VisibilityEncrypted); err != nil {
			return nil, err
		}
	}
	for _, idx := range redacted {
		if err := take(redactedPlaceholder(idx), VisibilityRedacted); err != nil {
			return nil, err
		}
	}

	for idx := range want {
		if !satisfied[idx] {
			return nil, fmt.Errorf("%w: surface %d in visibility plan is missing", ErrIndexIntegrity, idx)
		}
	}

	sortSurfaces(surfaces)

	g := &SurfaceGroup{
		Surfaces:               surfaces,
		StopSurface:            ct.StopSurface,
		WavelengthsNm:          ct.WavelengthsNm,
		PrimaryWavelengthIndex: ct.PrimaryWavelengthIndex,
		FieldType:              ct.FieldType,
		MaxField:               ct.MaxField,
	}
	if err := g.normalize(); err != nil {
		return nil, err
	}
	return g, nil
}
