package common

// ProductType is the semantic classification code of a product, as delivered by the geometry feed.
// The feed may carry codes outside the named set; they are preserved as-is.
type ProductType int32

// TypeUnknown is returned for lookups of products that do not exist.
const TypeUnknown ProductType = -1

const (
	TypeBuildingElementProxy ProductType = iota
	TypeWall
	TypeSlab
	TypeRoof
	TypeDoor
	TypeWindow
	TypeColumn
	TypeBeam
	TypeStair
	TypeRailing
	TypeCovering
	TypePlate
	TypeMember
	TypeFurnishingElement
	TypeFlowTerminal
	TypeOpening
	TypeSpace
	TypeSite
)

var productTypeNames = map[ProductType]string{
	TypeBuildingElementProxy: "IfcBuildingElementProxy",
	TypeWall:                 "IfcWall",
	TypeSlab:                 "IfcSlab",
	TypeRoof:                 "IfcRoof",
	TypeDoor:                 "IfcDoor",
	TypeWindow:               "IfcWindow",
	TypeColumn:               "IfcColumn",
	TypeBeam:                 "IfcBeam",
	TypeStair:                "IfcStair",
	TypeRailing:              "IfcRailing",
	TypeCovering:             "IfcCovering",
	TypePlate:                "IfcPlate",
	TypeMember:               "IfcMember",
	TypeFurnishingElement:    "IfcFurnishingElement",
	TypeFlowTerminal:         "IfcFlowTerminal",
	TypeOpening:              "IfcOpeningElement",
	TypeSpace:                "IfcSpace",
	TypeSite:                 "IfcSite",
}

func (t ProductType) String() string {
	if name, ok := productTypeNames[t]; ok {
		return name
	}
	return "IfcProduct"
}
