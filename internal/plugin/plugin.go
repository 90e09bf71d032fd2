package plugin

const (
	Name        = "rooch"
	Description = "Rooch Plugin for Eliza"
)

// New assembles the Rooch plugin: the assets provider and the SEND_COIN action.
func New(clients ClientFactory) Plugin {
	return Plugin{
		Name:        Name,
		Description: Description,
		Actions:     []Action{NewSendCoinAction(clients)},
		Providers:   []Provider{NewAssetsProvider(clients)},
	}
}

// Action returns the action registered under name or one of its similes.
func (p Plugin) Action(name string) (Action, bool) {
	for _, a := range p.Actions {
		if a.Name == name {
			return a, true
		}
		for _, s := range a.Similes {
			if s == name {
				return a, true
			}
		}
	}
	return Action{}, false
}

// Provider returns the provider registered under name.
func (p Plugin) Provider(name string) (Provider, bool) {
	for _, pr := range p.Providers {
		if pr.Name() == name {
			return pr, true
		}
	}
	return nil, false
}
