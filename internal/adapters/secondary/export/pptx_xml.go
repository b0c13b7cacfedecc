package export

import "encoding/xml"

// PresentationML and DrawingML element types. Prefixed names are written
// literally; the root elements declare the prefixes.

const (
	nsDrawingML     = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPresentation  = "http://schemas.openxmlformats.org/presentationml/2006/main"
	uriTable        = "http://schemas.openxmlformats.org/drawingml/2006/table"

	relSlide       = nsRelationships + "/slide"
	relSlideLayout = nsRelationships + "/slideLayout"
	relSlideMaster = nsRelationships + "/slideMaster"
	relNotesSlide  = nsRelationships + "/notesSlide"
	relNotesMaster = nsRelationships + "/notesMaster"
	relTheme       = nsRelationships + "/theme"
	relHyperlink   = nsRelationships + "/hyperlink"
	relImage       = nsRelationships + "/image"
	relOfficeDoc   = nsRelationships + "/officeDocument"
	relCoreProps   = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"

	ctPresentation  = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctSlide         = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctSlideLayout   = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctSlideMaster   = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctNotesSlide    = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ctNotesMaster   = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	ctTheme         = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctCoreProps     = "application/vnd.openxmlformats-package.core-properties+xml"
	ctRelationships = "application/vnd.openxmlformats-package.relationships+xml"
)

type pmlNamespaces struct {
	A string `xml:"xmlns:a,attr"`
	R string `xml:"xmlns:r,attr"`
	P string `xml:"xmlns:p,attr"`
}

func newPMLNamespaces() pmlNamespaces {
	return pmlNamespaces{A: nsDrawingML, R: nsRelationships, P: nsPresentation}
}

// Package plumbing

type contentTypes struct {
	XMLName   xml.Name     `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

type coreProperties struct {
	XMLName xml.Name `xml:"cp:coreProperties"`
	CP      string   `xml:"xmlns:cp,attr"`
	DC      string   `xml:"xmlns:dc,attr"`
	Title   string   `xml:"dc:title"`
	Creator string   `xml:"dc:creator,omitempty"`
}

// Presentation part

type presentationXML struct {
	XMLName xml.Name `xml:"p:presentation"`
	pmlNamespaces
	Masters     []idRef `xml:"p:sldMasterIdLst>p:sldMasterId"`
	NotesMaster []idRef `xml:"p:notesMasterIdLst>p:notesMasterId"`
	Slides      []idRef `xml:"p:sldIdLst>p:sldId"`
	SlideSize   extent  `xml:"p:sldSz"`
	NotesSize   extent  `xml:"p:notesSz"`
}

type idRef struct {
	ID  uint32 `xml:"id,attr,omitempty"`
	RID string `xml:"r:id,attr"`
}

// Slides and notes

type slideXML struct {
	XMLName xml.Name `xml:"p:sld"`
	pmlNamespaces
	CSld      commonSlide `xml:"p:cSld"`
	ClrMapOvr clrMapOvr   `xml:"p:clrMapOvr"`
}

type notesXML struct {
	XMLName xml.Name `xml:"p:notes"`
	pmlNamespaces
	CSld      commonSlide `xml:"p:cSld"`
	ClrMapOvr clrMapOvr   `xml:"p:clrMapOvr"`
}

type clrMapOvr struct {
	Master struct{} `xml:"a:masterClrMapping"`
}

type commonSlide struct {
	Name   string      `xml:"name,attr,omitempty"`
	Bg     *background `xml:"p:bg"`
	SpTree shapeTree   `xml:"p:spTree"`
}

type background struct {
	Fill      *solidFill `xml:"p:bgPr>a:solidFill"`
	Blip      *blipFill  `xml:"p:bgPr>a:blipFill"`
	EffectLst struct{}   `xml:"p:bgPr>a:effectLst"`
}

// shapeTree keeps shapes in z-order; Shapes holds *spShape, *picShape and
// *frameShape values
type shapeTree struct {
	NvGrpSpPr nvGrpSpPr `xml:"p:nvGrpSpPr"`
	GrpSpPr   struct{}  `xml:"p:grpSpPr"`
	Shapes    []any
}

type nvGrpSpPr struct {
	CNvPr      cNvPr    `xml:"p:cNvPr"`
	CNvGrpSpPr struct{} `xml:"p:cNvGrpSpPr"`
	NvPr       nvPr     `xml:"p:nvPr"`
}

type cNvPr struct {
	ID    int    `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr,omitempty"`
}

type nvPr struct {
	Ph *placeholder `xml:"p:ph"`
}

type placeholder struct {
	Type string `xml:"type,attr,omitempty"`
	Idx  string `xml:"idx,attr,omitempty"`
}

type spShape struct {
	XMLName xml.Name `xml:"p:sp"`
	NvSpPr  nvSpPr   `xml:"p:nvSpPr"`
	SpPr    spPr     `xml:"p:spPr"`
	TxBody  *txBody  `xml:"p:txBody"`
}

type nvSpPr struct {
	CNvPr   cNvPr   `xml:"p:cNvPr"`
	CNvSpPr cNvSpPr `xml:"p:cNvSpPr"`
	NvPr    nvPr    `xml:"p:nvPr"`
}

type cNvSpPr struct {
	TxBox string     `xml:"txBox,attr,omitempty"`
	Locks *noGrpLock `xml:"a:spLocks"`
}

type noGrpLock struct {
	NoGrp string `xml:"noGrp,attr"`
}

type spPr struct {
	Xfrm *transform `xml:"a:xfrm"`
	Geom *prstGeom  `xml:"a:prstGeom"`
	Fill *solidFill `xml:"a:solidFill"`
}

type transform struct {
	Off point  `xml:"a:off"`
	Ext extent `xml:"a:ext"`
}

type point struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type extent struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

type prstGeom struct {
	Prst  string   `xml:"prst,attr"`
	AvLst struct{} `xml:"a:avLst"`
}

type solidFill struct {
	Color srgbColor `xml:"a:srgbClr"`
}

type srgbColor struct {
	Val string `xml:"val,attr"`
}

// Text bodies

type txBody struct {
	BodyPr   bodyPr      `xml:"a:bodyPr"`
	LstStyle struct{}    `xml:"a:lstStyle"`
	Paras    []paragraph `xml:"a:p"`
}

type bodyPr struct {
	Wrap    string    `xml:"wrap,attr,omitempty"`
	Anchor  string    `xml:"anchor,attr,omitempty"`
	AutoFit *struct{} `xml:"a:normAutofit"`
}

type paragraph struct {
	PPr  *paraProps `xml:"a:pPr"`
	Runs []textRun  `xml:"a:r"`
}

type paraProps struct {
	MarL      int64      `xml:"marL,attr,omitempty"`
	Indent    int64      `xml:"indent,attr,omitempty"`
	Lvl       int        `xml:"lvl,attr,omitempty"`
	Algn      string     `xml:"algn,attr,omitempty"`
	BuNone    *struct{}  `xml:"a:buNone"`
	BuAutoNum *autoNum   `xml:"a:buAutoNum"`
	BuChar    *bulletChr `xml:"a:buChar"`
}

type autoNum struct {
	Type    string `xml:"type,attr"`
	StartAt int    `xml:"startAt,attr,omitempty"`
}

type bulletChr struct {
	Char string `xml:"char,attr"`
}

type textRun struct {
	RPr runProps `xml:"a:rPr"`
	T   string   `xml:"a:t"`
}

type runProps struct {
	Lang      string     `xml:"lang,attr,omitempty"`
	Sz        int        `xml:"sz,attr,omitempty"`
	B         string     `xml:"b,attr,omitempty"`
	I         string     `xml:"i,attr,omitempty"`
	Strike    string     `xml:"strike,attr,omitempty"`
	Fill      *solidFill `xml:"a:solidFill"`
	Highlight *solidFill `xml:"a:highlight"`
	Latin     *typeface  `xml:"a:latin"`
	Link      *hyperlink `xml:"a:hlinkClick"`
}

type typeface struct {
	Typeface string `xml:"typeface,attr"`
}

type hyperlink struct {
	RID string `xml:"r:id,attr"`
}

// Pictures

type picShape struct {
	XMLName  xml.Name `xml:"p:pic"`
	NvPicPr  nvPicPr  `xml:"p:nvPicPr"`
	BlipFill blipFill `xml:"p:blipFill"`
	SpPr     spPr     `xml:"p:spPr"`
}

type nvPicPr struct {
	CNvPr    cNvPr    `xml:"p:cNvPr"`
	CNvPicPr picLocks `xml:"p:cNvPicPr"`
	NvPr     nvPr     `xml:"p:nvPr"`
}

type picLocks struct {
	Locks struct {
		NoChangeAspect string `xml:"noChangeAspect,attr"`
	} `xml:"a:picLocks"`
}

type blipFill struct {
	Blip    blipRef  `xml:"a:blip"`
	Stretch struct{} `xml:"a:stretch>a:fillRect"`
}

// blipRef points at an external picture through a relationship
type blipRef struct {
	Link string `xml:"r:link,attr"`
}

// Tables

type frameShape struct {
	XMLName xml.Name        `xml:"p:graphicFrame"`
	NvPr    nvGraphicFrameP `xml:"p:nvGraphicFramePr"`
	Xfrm    transform       `xml:"p:xfrm"`
	Graphic graphicData     `xml:"a:graphic>a:graphicData"`
}

type nvGraphicFrameP struct {
	CNvPr  cNvPr `xml:"p:cNvPr"`
	CNvGFP struct {
		Locks noGrpLock `xml:"a:graphicFrameLocks"`
	} `xml:"p:cNvGraphicFramePr"`
	NvPr nvPr `xml:"p:nvPr"`
}

type graphicData struct {
	URI   string   `xml:"uri,attr"`
	Table tableXML `xml:"a:tbl"`
}

type tableXML struct {
	Pr   tableProps `xml:"a:tblPr"`
	Grid []gridCol  `xml:"a:tblGrid>a:gridCol"`
	Rows []tableRow `xml:"a:tr"`
}

type tableProps struct {
	FirstRow string `xml:"firstRow,attr,omitempty"`
	BandRow  string `xml:"bandRow,attr"`
}

type gridCol struct {
	W int64 `xml:"w,attr"`
}

type tableRow struct {
	H     int64       `xml:"h,attr"`
	Cells []tableCell `xml:"a:tc"`
}

type tableCell struct {
	TxBody txBody   `xml:"a:txBody"`
	TcPr   struct{} `xml:"a:tcPr"`
}
