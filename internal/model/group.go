package model

// Group описывает группу каталога. Участники не встраиваются в запись:
// они подгружаются по требованию и кэшируются на время сеанса.
type Group struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
	// MemberCount — количество участников по данным источника; может
	// отставать от фактического состава.
	MemberCount int `json:"member_count"`
}
