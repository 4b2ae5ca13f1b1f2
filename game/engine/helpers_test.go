package engine

func addCharacter(w *World, pos Position, attrs Attributes) EntityID {
	id := w.CreateEntity()
	w.Positions.Set(id, pos)
	w.Attributes.Set(id, attrs)
	w.Facings.Set(id, Right)
	w.Players.Set(id, PlayerControlled{})
	return id
}

func addNPC(w *World, pos Position, attrs Attributes, hp int) EntityID {
	id := w.CreateEntity()
	w.Positions.Set(id, pos)
	w.Attributes.Set(id, attrs)
	w.Stats.Set(id, Stats{HP: hp, MaxHP: hp, Stamina: 50, MaxStamina: 50})
	w.Facings.Set(id, Left)
	w.NPCs.Set(id, NPC{})
	return id
}

func addCrate(w *World, pos Position, weight int) EntityID {
	id := w.CreateEntity()
	w.Positions.Set(id, pos)
	w.Pushables.Set(id, Pushable{Weight: weight})
	return id
}

func newContext(w *World, g *Grid, actor EntityID) *ActionContext {
	return &ActionContext{
		World:     w,
		Grid:      g,
		ActorID:   actor,
		AP:        NewActionPoints(DefaultAP),
		Scheduler: NewScheduler(),
		Rules:     DefaultRules(),
	}
}
