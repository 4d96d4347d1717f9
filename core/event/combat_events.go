package event

// Damage is published when an entity takes damage.
type Damage struct {
	Base
	Target string
	Amount int
}

func NewDamage(p Priority, target string, amount int) *Damage {
	return &Damage{Base: MakeBase(p), Target: target, Amount: amount}
}

func (e *Damage) EventName() string {
	return "Damage"
}

// Heal is published when an entity recovers health.
type Heal struct {
	Base
	Target string
	Amount int
}

func NewHeal(p Priority, target string, amount int) *Heal {
	return &Heal{Base: MakeBase(p), Target: target, Amount: amount}
}

func (e *Heal) EventName() string {
	return "Heal"
}

// EntityDefeated is published when an entity's health reaches zero.
type EntityDefeated struct {
	Base
	Entity string
	Killer string // Empty if the cause is environmental
}

func NewEntityDefeated(p Priority, entity, killer string) *EntityDefeated {
	return &EntityDefeated{Base: MakeBase(p), Entity: entity, Killer: killer}
}

func (e *EntityDefeated) EventName() string {
	return "EntityDefeated"
}
