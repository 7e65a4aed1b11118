package game

// DefaultAction is what a player who ran out of time does: check when that
// is free, otherwise fold.
func DefaultAction(legal LegalActions) Action {
	if legal.CanCheck {
		return Action{Player: legal.Player, Type: ActionCheck}
	}
	return Action{Player: legal.Player, Type: ActionFold}
}

// ForceActionFor applies DefaultAction for the player whose turn it is and
// flags them to sit out from the next hand until Reconnect.
func (e *Engine) ForceActionFor(id PlayerID) (Action, error) {
	p, err := e.actor(id)
	if err != nil {
		return Action{}, err
	}
	a := DefaultAction(e.legalFor(p))
	if err := e.apply(p, a); err != nil {
		return Action{}, err
	}
	e.sitOut[id] = true
	return a, nil
}

func (e *Engine) Reconnect(id PlayerID) {
	delete(e.sitOut, id)
}

func (e *Engine) SittingOutNext(id PlayerID) bool {
	return e.sitOut[id]
}

// SitOut flags a player to be skipped from the next deal, e.g. after a
// disconnect.
func (e *Engine) SitOut(id PlayerID) {
	e.sitOut[id] = true
}
