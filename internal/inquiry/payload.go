package inquiry

// Payload section keys.
const (
	SectionBuyer       = "section1_buyerCompanyDetails"
	SectionQuartz      = "section2_quartzRequirementDetails"
	SectionChemical    = "section3_chemicalSpecifications"
	SectionQuantity    = "section4_quantityRequirement"
	SectionPacking     = "section5_packingDetails"
	SectionDelivery    = "section6_deliveryTradeTerms"
	SectionApplication = "section7_applicationEndUse"
	SectionDocuments   = "section8_documentsRequired"
	SectionRemarks     = "section9_additionalRemarks"
	SectionDeclaration = "section10_declaration"
)

// BuildPayload merges the form sections into one nested document. Fixed
// checkboxes are always present as booleans. Optional free-text variants are
// nil unless their checkbox is ticked or their value is non-empty.
func BuildPayload(f Form) map[string]any {
	q := f.Quartz

	application := make(map[string]any, len(ApplicationGroups))
	for _, g := range ApplicationGroups {
		opts := make(map[string]any, len(g.Options)+1)
		for _, o := range g.Options {
			opts[o.Key] = f.Application[g.Key][o.Key]
		}
		if g.Key == OtherSpecializedGroup {
			opts["otherText"] = f.ApplicationOther
		}
		application[g.Key] = opts
	}

	return map[string]any{
		SectionBuyer: map[string]any{
			"companyName":       f.Buyer.CompanyName,
			"contactPersonName": f.Buyer.ContactPersonName,
			"designation":       f.Buyer.Designation,
			"email":             f.Buyer.Email,
			"mobileWhatsApp":    f.Buyer.MobileWhatsApp,
			"companyAddress":    f.Buyer.CompanyAddress,
			"country":           f.Buyer.Country,
		},
		SectionQuartz: map[string]any{
			"typeOfQuartz": map[string]any{
				"rawQuartz":           q.TypeRawQuartz,
				"lumps":               q.TypeLumps,
				"grits":               q.TypeGrits,
				"powder":              q.TypePowder,
				"highPurityQuartzHPQ": q.TypeHPQ,
			},
			"gradePurity": map[string]any{
				"95%":   q.Grade95,
				"97%":   q.Grade97,
				"98%":   q.Grade98,
				"99%":   q.Grade99,
				"99.9%": q.Grade999,
				"other": textIf(q.GradeOther, q.GradeOtherText),
			},
			"color": map[string]any{
				"milkyWhite": q.ColorMilkyWhite,
				"snowWhite":  q.ColorSnowWhite,
				"crystal":    q.ColorCrystal,
				"other":      textIf(q.ColorOther, q.ColorOtherText),
			},
			"sizeSpecification": q.SizeSpecification,
		},
		SectionChemical: map[string]any{
			"sio2":  f.Chemical.SiO2,
			"fe2o3": f.Chemical.Fe2O3,
			"al2o3": f.Chemical.Al2O3,
			"tio2":  f.Chemical.TiO2,
			"cao":   f.Chemical.CaO,
			"mgo":   f.Chemical.MgO,
		},
		SectionQuantity: map[string]any{
			"requiredQuantity": f.Quantity.RequiredQuantity,
			"quantityUnit":     f.Quantity.QuantityUnit,
			"monthlyOrOneTime": f.Quantity.MonthlyOrOneTime,
			"trialQuantity":    textIf(f.Quantity.TrialQuantity != "", f.Quantity.TrialQuantity),
		},
		SectionPacking: map[string]any{
			"jumboBags1MT":  f.Packing.JumboBags,
			"ppBags25_50kg": f.Packing.PPBags,
			"bulk":          f.Packing.Bulk,
			"customPacking": textIf(f.Packing.CustomPacking, f.Packing.CustomPackingText),
		},
		SectionDelivery: map[string]any{
			"deliveryTerm":   f.Delivery.DeliveryTerm,
			"portOfDelivery": f.Delivery.PortOfDelivery,
			"targetPrice":    f.Delivery.TargetPrice,
		},
		SectionApplication: application,
		SectionDocuments: map[string]any{
			"coa":               f.Documents.COA,
			"msds":              f.Documents.MSDS,
			"originCertificate": f.Documents.OriginCertificate,
			"sample":            f.Documents.Sample,
		},
		SectionRemarks: f.AdditionalRemarks,
		SectionDeclaration: map[string]any{
			"confirmation": f.Declaration.Confirmation,
			"name":         f.Declaration.Name,
			"date":         f.Declaration.Date,
		},
	}
}

// textIf returns s when set is true and nil otherwise.
func textIf(set bool, s string) any {
	if !set {
		return nil
	}
	return s
}

// StripUnset returns a copy of m without nil leaves. Nested maps are
// stripped recursively; false, zero numbers, empty strings, times and slices
// are kept as they are.
func StripUnset(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			continue
		case map[string]any:
			out[k] = StripUnset(val)
		default:
			out[k] = val
		}
	}
	return out
}
