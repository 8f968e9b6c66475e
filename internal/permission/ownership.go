package permission

// Ownership describes the caller's relation to a resource.
type Ownership struct {
	ActorID           string
	ActorCompanyID    string
	OwnerID           string
	OwnerReportsTo    string
	ResourceCompanyID string
}

// LevelFor derives the narrowest level a caller needs to reach the resource.
func LevelFor(o Ownership) Level {
	switch {
	case o.OwnerID != "" && o.OwnerID == o.ActorID:
		return LevelOwn
	case o.OwnerReportsTo != "" && o.OwnerReportsTo == o.ActorID:
		return LevelTeam
	case o.ResourceCompanyID != "" && o.ResourceCompanyID == o.ActorCompanyID:
		return LevelCompany
	default:
		return LevelAll
	}
}
