package inquiry

import (
	"net/url"
	"strings"
)

// DefaultQuantityUnit is preselected on a fresh form.
const DefaultQuantityUnit = "MT"

// BuyerDetails is section 1.
type BuyerDetails struct {
	CompanyName       string
	ContactPersonName string
	Designation       string
	Email             string
	MobileWhatsApp    string
	CompanyAddress    string
	Country           string
}

// QuartzRequirement is section 2.
type QuartzRequirement struct {
	TypeRawQuartz     bool
	TypeLumps         bool
	TypeGrits         bool
	TypePowder        bool
	TypeHPQ           bool
	Grade95           bool
	Grade97           bool
	Grade98           bool
	Grade99           bool
	Grade999          bool
	GradeOther        bool
	GradeOtherText    string
	ColorMilkyWhite   bool
	ColorSnowWhite    bool
	ColorCrystal      bool
	ColorOther        bool
	ColorOtherText    string
	SizeSpecification string
}

// ChemicalSpecs is section 3, one target percentage per oxide.
type ChemicalSpecs struct {
	SiO2  string
	Fe2O3 string
	Al2O3 string
	TiO2  string
	CaO   string
	MgO   string
}

// QuantityRequirement is section 4.
type QuantityRequirement struct {
	RequiredQuantity string
	QuantityUnit     string
	MonthlyOrOneTime string
	TrialQuantity    string
}

// PackingDetails is section 5.
type PackingDetails struct {
	JumboBags         bool
	PPBags            bool
	Bulk              bool
	CustomPacking     bool
	CustomPackingText string
}

// DeliveryTerms is section 6.
type DeliveryTerms struct {
	DeliveryTerm   string
	PortOfDelivery string
	TargetPrice    string
}

// DocumentsRequired is section 8.
type DocumentsRequired struct {
	COA               bool
	MSDS              bool
	OriginCertificate bool
	Sample            bool
}

// Declaration is section 10.
type Declaration struct {
	Confirmation bool
	Name         string
	Date         string
}

// Form holds every section of the quartz requirement inquiry. Application
// (section 7) is keyed by group then option, following ApplicationGroups.
type Form struct {
	Buyer             BuyerDetails
	Quartz            QuartzRequirement
	Chemical          ChemicalSpecs
	Quantity          QuantityRequirement
	Packing           PackingDetails
	Delivery          DeliveryTerms
	Application       map[string]map[string]bool
	ApplicationOther  string
	Documents         DocumentsRequired
	AdditionalRemarks string
	Declaration       Declaration
}

// Option is one checkbox in an option group.
type Option struct {
	Key   string
	Label string
}

// OptionGroup is a titled set of checkboxes.
type OptionGroup struct {
	Key     string
	Title   string
	Options []Option
}

// OtherSpecializedGroup carries the free-text "other" application.
const OtherSpecializedGroup = "otherSpecialized"

// ApplicationGroups lists the section 7 end uses in display order.
var ApplicationGroups = []OptionGroup{
	{Key: "glass", Title: "A. Glass Industry", Options: []Option{
		{"container", "Container Glass"}, {"float", "Float Glass"}, {"specialty", "Specialty Glass"},
		{"optical", "Optical Glass"}, {"fiberglass", "Fiberglass"},
	}},
	{Key: "ceramic", Title: "B. Ceramic Industry", Options: []Option{
		{"tiles", "Tiles"}, {"sanitary", "Sanitary Ware"}, {"tableware", "Tableware"},
		{"technical", "Technical / Advanced Ceramics"},
	}},
	{Key: "foundry", Title: "C. Foundry Industry", Options: []Option{
		{"moldingSand", "Molding Sand"}, {"coreMaking", "Core Making"}, {"refractory", "Refractory Applications"},
	}},
	{Key: "construction", Title: "D. Construction & Paint", Options: []Option{
		{"chemicals", "Construction Chemicals"}, {"paints", "Paints & Coatings"},
		{"flooring", "Flooring / Decorative Applications"},
	}},
	{Key: "solar", Title: "E. Solar Industry", Options: []Option{
		{"mgSi", "Metallurgical Grade Silicon (MG-Si)"}, {"solarGlass", "Solar Glass"},
		{"cruciblesIngot", "Quartz Crucibles for Ingot Pulling"}, {"polysilicon", "Polysilicon Manufacturing"},
	}},
	{Key: "semiconductor", Title: "F. Semiconductor / Electronics", Options: []Option{
		{"hpqFeedstock", "HPQ Feedstock"}, {"fusedQuartz", "Fused Quartz Products"},
		{"waferProcessing", "Wafer Processing"}, {"etchingFurnaces", "Etching & Diffusion Furnaces"},
	}},
	{Key: "crucible", Title: "G. Crucible Applications", Options: []Option{
		{"solarGrade", "Quartz Crucibles - Solar Grade"}, {"semiconductorGrade", "Quartz Crucibles - Semiconductor Grade"},
		{"czMethod", "CZ Method"}, {"monocrystalline", "Monocrystalline Silicon"}, {"polycrystalline", "Polycrystalline Silicon"},
	}},
	{Key: OtherSpecializedGroup, Title: "H. Other Specialized Applications", Options: []Option{
		{"lighting", "Lighting Industry"}, {"laboratory", "Laboratory Ware"}, {"refractories", "Refractories"},
		{"other", "Other"},
	}},
}

// Select options offered by the form.
var (
	QuantityUnits       = []string{"MT", "kg", "tons"}
	DeliveryTermOptions = []string{"EXW", "FOB", "CIF", "CFR"}
)

// Countries lists the buyer country choices.
var Countries = []string{
	"India", "United Arab Emirates", "Saudi Arabia", "Qatar", "Oman", "Bangladesh", "Sri Lanka", "Nepal",
	"Vietnam", "Indonesia", "Malaysia", "Thailand", "China", "Japan", "South Korea", "Taiwan",
	"Turkey", "Egypt", "South Africa", "Germany", "Italy", "Spain", "United Kingdom",
	"United States", "Canada", "Brazil", "Mexico", "Australia", "Other",
}

// NewForm returns an empty form with defaults applied.
func NewForm() Form {
	f := Form{
		Quantity:    QuantityRequirement{QuantityUnit: DefaultQuantityUnit},
		Application: make(map[string]map[string]bool, len(ApplicationGroups)),
	}
	for _, g := range ApplicationGroups {
		opts := make(map[string]bool, len(g.Options))
		for _, o := range g.Options {
			opts[o.Key] = false
		}
		f.Application[g.Key] = opts
	}
	return f
}

// ParseForm maps posted form values onto a Form. Checkboxes count as set
// when their field is present with any non-empty value.
func ParseForm(v url.Values) Form {
	f := NewForm()
	text := func(name string) string { return v.Get(name) }
	checked := func(name string) bool { return strings.TrimSpace(v.Get(name)) != "" }

	f.Buyer = BuyerDetails{
		CompanyName:       text("buyer.companyName"),
		ContactPersonName: text("buyer.contactPersonName"),
		Designation:       text("buyer.designation"),
		Email:             text("buyer.email"),
		MobileWhatsApp:    text("buyer.mobileWhatsApp"),
		CompanyAddress:    text("buyer.companyAddress"),
		Country:           text("buyer.country"),
	}
	f.Quartz = QuartzRequirement{
		TypeRawQuartz:     checked("quartz.typeRawQuartz"),
		TypeLumps:         checked("quartz.typeLumps"),
		TypeGrits:         checked("quartz.typeGrits"),
		TypePowder:        checked("quartz.typePowder"),
		TypeHPQ:           checked("quartz.typeHPQ"),
		Grade95:           checked("quartz.grade95"),
		Grade97:           checked("quartz.grade97"),
		Grade98:           checked("quartz.grade98"),
		Grade99:           checked("quartz.grade99"),
		Grade999:          checked("quartz.grade999"),
		GradeOther:        checked("quartz.gradeOther"),
		GradeOtherText:    text("quartz.gradeOtherText"),
		ColorMilkyWhite:   checked("quartz.colorMilkyWhite"),
		ColorSnowWhite:    checked("quartz.colorSnowWhite"),
		ColorCrystal:      checked("quartz.colorCrystal"),
		ColorOther:        checked("quartz.colorOther"),
		ColorOtherText:    text("quartz.colorOtherText"),
		SizeSpecification: text("quartz.sizeSpecification"),
	}
	f.Chemical = ChemicalSpecs{
		SiO2:  text("chemical.sio2"),
		Fe2O3: text("chemical.fe2o3"),
		Al2O3: text("chemical.al2o3"),
		TiO2:  text("chemical.tio2"),
		CaO:   text("chemical.cao"),
		MgO:   text("chemical.mgo"),
	}
	f.Quantity = QuantityRequirement{
		RequiredQuantity: text("quantity.requiredQuantity"),
		QuantityUnit:     text("quantity.quantityUnit"),
		MonthlyOrOneTime: text("quantity.monthlyOrOneTime"),
		TrialQuantity:    text("quantity.trialQuantity"),
	}
	if f.Quantity.QuantityUnit == "" {
		f.Quantity.QuantityUnit = DefaultQuantityUnit
	}
	switch f.Quantity.MonthlyOrOneTime {
	case "monthly", "one_time":
	default:
		f.Quantity.MonthlyOrOneTime = ""
	}
	f.Packing = PackingDetails{
		JumboBags:         checked("packing.jumboBags"),
		PPBags:            checked("packing.ppBags"),
		Bulk:              checked("packing.bulk"),
		CustomPacking:     checked("packing.customPacking"),
		CustomPackingText: text("packing.customPackingText"),
	}
	f.Delivery = DeliveryTerms{
		DeliveryTerm:   text("delivery.deliveryTerm"),
		PortOfDelivery: text("delivery.portOfDelivery"),
		TargetPrice:    text("delivery.targetPrice"),
	}
	for _, g := range ApplicationGroups {
		for _, o := range g.Options {
			f.Application[g.Key][o.Key] = checked(ApplicationField(g.Key, o.Key))
		}
	}
	f.ApplicationOther = text("application.otherSpecialized.otherText")
	f.Documents = DocumentsRequired{
		COA:               checked("documents.coa"),
		MSDS:              checked("documents.msds"),
		OriginCertificate: checked("documents.originCertificate"),
		Sample:            checked("documents.sample"),
	}
	f.AdditionalRemarks = text("additionalRemarks")
	f.Declaration = Declaration{
		Confirmation: checked("declaration.confirmation"),
		Name:         text("declaration.name"),
		Date:         text("declaration.date"),
	}
	return f
}

// ApplicationField names the form field for an application checkbox.
func ApplicationField(group, option string) string {
	return "application." + group + "." + option
}

// ApplicationChecked reports whether an application option is ticked.
func (f Form) ApplicationChecked(group, option string) bool {
	return f.Application[group][option]
}
