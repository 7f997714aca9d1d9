package document

// Block is one positioned text fragment extracted from the source document,
// in reading order (top-to-bottom, left-to-right per page). Y grows downward
// from the top edge of the page, so header/footer band checks read naturally.
type Block struct {
	Text     string
	X        float64
	Y        float64
	FontSize float64
	Page     int
}
