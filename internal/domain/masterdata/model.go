package masterdata

// Item is one entry of a lookup table.
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Bundle holds every lookup table the survey forms need, refreshed
// wholesale from the server — there are no partial updates.
type Bundle struct {
	ResponseTypes     []Item `json:"responseTypes"`
	PropertyTypes     []Item `json:"propertyTypes"`
	RoadTypes         []Item `json:"roadTypes"`
	ConstructionTypes []Item `json:"constructionTypes"`
	WaterSources      []Item `json:"waterSources"`
	DisposalTypes     []Item `json:"disposalTypes"`
	FloorNumbers      []Item `json:"floorNumbers"`
	OccupancyStatuses []Item `json:"occupancyStatuses"`
}

// Mohalla is the smallest assignment scope.
type Mohalla struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Assignment is one ward-level scope the surveyor may work in. The
// primary assignment pre-fills new survey forms.
type Assignment struct {
	ID       int       `json:"id"`
	ULB      Item      `json:"ulb"`
	Zone     Item      `json:"zone"`
	Ward     Item      `json:"ward"`
	Mohallas []Mohalla `json:"mohallas"`
}
