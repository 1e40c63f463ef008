package models

// Room is owned and mutated by the backend; the client holds a per-view
// copy that is discarded on navigation.
type Room struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	RoomType    string   `json:"roomType"`
	Capacity    int      `json:"capacity"`
	Amenities   []string `json:"amenities"`
	FloorLevel  int      `json:"floorLevel"`
	BedType     string   `json:"bedType"`
	Available   bool     `json:"available"`
}

// RoomInput is the payload for room create/update calls. Empty image and
// amenity entries are stripped before submission.
type RoomInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	RoomType    string   `json:"roomType"`
	Capacity    int      `json:"capacity"`
	Amenities   []string `json:"amenities"`
	FloorLevel  int      `json:"floorLevel"`
	BedType     string   `json:"bedType"`
	Available   bool     `json:"available"`
}

// CompactEntries drops empty strings from images and amenities, keeping order.
func (in *RoomInput) CompactEntries() {
	in.Images = compact(in.Images)
	in.Amenities = compact(in.Amenities)
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
