package scenario

import (
	"fmt"

	"lumina-go/core/event"
)

// builder constructs a concrete event from a step's priority and params.
type builder func(p event.Priority, params map[string]any) (event.Event, error)

// builders maps step event names to constructors. Names match the events'
// EventName values.
var builders = map[string]builder{
	"Damage": func(p event.Priority, params map[string]any) (event.Event, error) {
		target, err := stringParam(params, "target")
		if err != nil {
			return nil, err
		}
		amount, err := intParam(params, "amount")
		if err != nil {
			return nil, err
		}
		return event.NewDamage(p, target, amount), nil
	},
	"Heal": func(p event.Priority, params map[string]any) (event.Event, error) {
		target, err := stringParam(params, "target")
		if err != nil {
			return nil, err
		}
		amount, err := intParam(params, "amount")
		if err != nil {
			return nil, err
		}
		return event.NewHeal(p, target, amount), nil
	},
	"EntityDefeated": func(p event.Priority, params map[string]any) (event.Event, error) {
		entity, err := stringParam(params, "entity")
		if err != nil {
			return nil, err
		}
		killer, _ := stringParam(params, "killer") // optional
		return event.NewEntityDefeated(p, entity, killer), nil
	},
	"KeyPressed": func(p event.Priority, params map[string]any) (event.Event, error) {
		key, err := stringParam(params, "key")
		if err != nil {
			return nil, err
		}
		action := event.KeyActionPress
		if raw, ok := params["action"]; ok {
			name, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("param action: expected string, got %T", raw)
			}
			switch name {
			case "press":
				action = event.KeyActionPress
			case "release":
				action = event.KeyActionRelease
			default:
				return nil, fmt.Errorf("param action: unknown value %q", name)
			}
		}
		return event.NewKeyPressed(p, key, action), nil
	},
	"CursorMoved": func(p event.Priority, params map[string]any) (event.Event, error) {
		x, err := floatParam(params, "x")
		if err != nil {
			return nil, err
		}
		y, err := floatParam(params, "y")
		if err != nil {
			return nil, err
		}
		return event.NewCursorMoved(p, x, y), nil
	},
	"WindowResized": func(p event.Priority, params map[string]any) (event.Event, error) {
		width, err := intParam(params, "width")
		if err != nil {
			return nil, err
		}
		height, err := intParam(params, "height")
		if err != nil {
			return nil, err
		}
		return event.NewWindowResized(p, width, height), nil
	},
	"WindowClosed": func(p event.Priority, params map[string]any) (event.Event, error) {
		return event.NewWindowClosed(p), nil
	},
}

// BuildEvent constructs the concrete event described by a step.
func BuildEvent(step Step) (event.Event, error) {
	build, ok := builders[step.Event]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %q", step.Event)
	}
	ev, err := build(step.Priority, step.Params)
	if err != nil {
		return nil, fmt.Errorf("build %s event: %w", step.Event, err)
	}
	return ev, nil
}

// KnownEvents returns the event kind names the factory can build.
func KnownEvents() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	return names
}

func stringParam(params map[string]any, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", fmt.Errorf("param %s: missing", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("param %s: expected string, got %T", key, raw)
	}
	return s, nil
}

func intParam(params map[string]any, key string) (int, error) {
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("param %s: missing", key)
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("param %s: expected integer, got %T", key, raw)
	}
}

func floatParam(params map[string]any, key string) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("param %s: missing", key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("param %s: expected number, got %T", key, raw)
	}
}
