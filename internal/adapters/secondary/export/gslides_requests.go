package export

// Google Slides batchUpdate request bodies. Only the fields slidemark
// emits are modelled; JSON names follow the Slides v1 REST API.

// SlidesDocument is the output of the gslides generator
type SlidesDocument struct {
	Title   string        `json:"title"`
	Batches []SlidesBatch `json:"batches"`
	// PendingNotes can only be written once the slides exist, because the
	// speaker notes shape ID is assigned by the server
	PendingNotes []PendingNote `json:"pendingNotes,omitempty"`
}

// RequestCount returns the number of requests across all batches
func (d *SlidesDocument) RequestCount() int {
	n := 0
	for _, b := range d.Batches {
		n += len(b.Requests)
	}
	return n
}

// SlidesBatch is the body of one presentations.batchUpdate call
type SlidesBatch struct {
	Requests []SlidesRequest `json:"requests"`
}

// PendingNote is speaker notes text waiting for its notes shape
type PendingNote struct {
	SlideObjectID string `json:"slideObjectId"`
	SlideID       string `json:"slideId"`
	Text          string `json:"text"`
}

// SlidesRequest holds exactly one request kind
type SlidesRequest struct {
	CreateSlide            *CreateSlideRequest            `json:"createSlide,omitempty"`
	CreateShape            *CreateShapeRequest            `json:"createShape,omitempty"`
	InsertText             *InsertTextRequest             `json:"insertText,omitempty"`
	UpdateTextStyle        *UpdateTextStyleRequest        `json:"updateTextStyle,omitempty"`
	UpdateParagraphStyle   *UpdateParagraphStyleRequest   `json:"updateParagraphStyle,omitempty"`
	CreateParagraphBullets *CreateParagraphBulletsRequest `json:"createParagraphBullets,omitempty"`
	CreateImage            *CreateImageRequest            `json:"createImage,omitempty"`
	CreateTable            *CreateTableRequest            `json:"createTable,omitempty"`
	UpdateShapeProperties  *UpdateShapePropertiesRequest  `json:"updateShapeProperties,omitempty"`
	UpdatePageProperties   *UpdatePagePropertiesRequest   `json:"updatePageProperties,omitempty"`
}

type CreateSlideRequest struct {
	ObjectID              string                       `json:"objectId"`
	InsertionIndex        int                          `json:"insertionIndex"`
	SlideLayoutReference  LayoutReference              `json:"slideLayoutReference"`
	PlaceholderIDMappings []LayoutPlaceholderIDMapping `json:"placeholderIdMappings,omitempty"`
}

type LayoutReference struct {
	PredefinedLayout string `json:"predefinedLayout"`
}

type LayoutPlaceholderIDMapping struct {
	LayoutPlaceholder Placeholder `json:"layoutPlaceholder"`
	ObjectID          string      `json:"objectId"`
}

type Placeholder struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

type CreateShapeRequest struct {
	ObjectID          string                `json:"objectId"`
	ShapeType         string                `json:"shapeType"`
	ElementProperties PageElementProperties `json:"elementProperties"`
}

type PageElementProperties struct {
	PageObjectID string           `json:"pageObjectId"`
	Size         *Size            `json:"size,omitempty"`
	Transform    *AffineTransform `json:"transform,omitempty"`
}

type Size struct {
	Width  Dimension `json:"width"`
	Height Dimension `json:"height"`
}

type Dimension struct {
	Magnitude float64 `json:"magnitude"`
	Unit      string  `json:"unit"`
}

type AffineTransform struct {
	ScaleX     float64 `json:"scaleX"`
	ScaleY     float64 `json:"scaleY"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Unit       string  `json:"unit"`
}

type InsertTextRequest struct {
	ObjectID       string             `json:"objectId"`
	CellLocation   *TableCellLocation `json:"cellLocation,omitempty"`
	Text           string             `json:"text"`
	InsertionIndex int                `json:"insertionIndex"`
}

type TableCellLocation struct {
	RowIndex    int `json:"rowIndex"`
	ColumnIndex int `json:"columnIndex"`
}

// TextRange uses UTF-16 code unit indexes
type TextRange struct {
	Type       string `json:"type"`
	StartIndex *int   `json:"startIndex,omitempty"`
	EndIndex   *int   `json:"endIndex,omitempty"`
}

type UpdateTextStyleRequest struct {
	ObjectID     string             `json:"objectId"`
	CellLocation *TableCellLocation `json:"cellLocation,omitempty"`
	TextRange    TextRange          `json:"textRange"`
	Style        TextStyle          `json:"style"`
	Fields       string             `json:"fields"`
}

type TextStyle struct {
	Bold            bool           `json:"bold,omitempty"`
	Italic          bool           `json:"italic,omitempty"`
	Strikethrough   bool           `json:"strikethrough,omitempty"`
	FontFamily      string         `json:"fontFamily,omitempty"`
	FontSize        *Dimension     `json:"fontSize,omitempty"`
	ForegroundColor *OptionalColor `json:"foregroundColor,omitempty"`
	BackgroundColor *OptionalColor `json:"backgroundColor,omitempty"`
	Link            *Link          `json:"link,omitempty"`
}

type Link struct {
	URL string `json:"url"`
}

type OptionalColor struct {
	OpaqueColor OpaqueColor `json:"opaqueColor"`
}

type OpaqueColor struct {
	RGBColor RGBColor `json:"rgbColor"`
}

// RGBColor channels are fractions in [0,1]
type RGBColor struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

type UpdateParagraphStyleRequest struct {
	ObjectID     string             `json:"objectId"`
	CellLocation *TableCellLocation `json:"cellLocation,omitempty"`
	TextRange    TextRange          `json:"textRange"`
	Style        ParagraphStyle     `json:"style"`
	Fields       string             `json:"fields"`
}

type ParagraphStyle struct {
	Alignment string `json:"alignment,omitempty"`
}

type CreateParagraphBulletsRequest struct {
	ObjectID     string    `json:"objectId"`
	TextRange    TextRange `json:"textRange"`
	BulletPreset string    `json:"bulletPreset"`
}

type CreateImageRequest struct {
	ObjectID          string                `json:"objectId"`
	URL               string                `json:"url"`
	ElementProperties PageElementProperties `json:"elementProperties"`
}

type CreateTableRequest struct {
	ObjectID          string                `json:"objectId"`
	ElementProperties PageElementProperties `json:"elementProperties"`
	Rows              int                   `json:"rows"`
	Columns           int                   `json:"columns"`
}

type UpdateShapePropertiesRequest struct {
	ObjectID        string          `json:"objectId"`
	ShapeProperties ShapeProperties `json:"shapeProperties"`
	Fields          string          `json:"fields"`
}

type ShapeProperties struct {
	ShapeBackgroundFill BackgroundFill `json:"shapeBackgroundFill"`
}

type UpdatePagePropertiesRequest struct {
	ObjectID       string         `json:"objectId"`
	PageProperties PageProperties `json:"pageProperties"`
	Fields         string         `json:"fields"`
}

type PageProperties struct {
	PageBackgroundFill BackgroundFill `json:"pageBackgroundFill"`
}

type BackgroundFill struct {
	SolidFill            *SolidFill            `json:"solidFill,omitempty"`
	StretchedPictureFill *StretchedPictureFill `json:"stretchedPictureFill,omitempty"`
}

type SolidFill struct {
	Color OpaqueColor `json:"color"`
}

type StretchedPictureFill struct {
	ContentURL string `json:"contentUrl"`
}
