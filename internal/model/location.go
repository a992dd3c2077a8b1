package model

// LocationRequest uses pointers so a missing coordinate can be told apart
// from one sent as 0.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type LocationResponse struct {
	Address string `json:"address"`
}
