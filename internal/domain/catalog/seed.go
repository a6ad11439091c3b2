package catalog

// SeedSampleTypes is the built-in specimen reference data.
var SeedSampleTypes = []SampleType{
	{ID: "edta", Name: "EDTA Whole Blood", TubeColor: "#a855f7"},
	{ID: "serum", Name: "Serum", TubeColor: "#eab308"},
	{ID: "urine", Name: "Urine", TubeColor: "#fde047"},
}

// SeedTests is the built-in test catalog with parameters and prices.
var SeedTests = []LabTest{
	{
		ID: "cbc", Name: "Complete Blood Count (CBC)", Category: "Hematology",
		Price: 750, SampleTypeID: "edta",
		Parameters: []TestParameter{
			{ID: "hb", TestID: "cbc", Name: "Hemoglobin", Unit: "g/dL", ReferenceRange: "13.5 - 17.5"},
			{ID: "wbc", TestID: "cbc", Name: "WBC Count", Unit: "x10^9/L", ReferenceRange: "4.5 - 11.0"},
			{ID: "rbc", TestID: "cbc", Name: "RBC Count", Unit: "x10^12/L", ReferenceRange: "4.5 - 5.9"},
			{ID: "plt", TestID: "cbc", Name: "Platelets", Unit: "x10^9/L", ReferenceRange: "150 - 450"},
		},
	},
	{
		ID: "lipid", Name: "Lipid Profile", Category: "Biochemistry",
		Price: 1500, SampleTypeID: "serum",
		Parameters: []TestParameter{
			{ID: "chol", TestID: "lipid", Name: "Total Cholesterol", Unit: "mg/dL", ReferenceRange: "< 200"},
			{ID: "tg", TestID: "lipid", Name: "Triglycerides", Unit: "mg/dL", ReferenceRange: "< 150"},
			{ID: "hdl", TestID: "lipid", Name: "HDL Cholesterol", Unit: "mg/dL", ReferenceRange: "> 40"},
			{ID: "ldl", TestID: "lipid", Name: "LDL Cholesterol", Unit: "mg/dL", ReferenceRange: "< 100"},
		},
	},
	{
		ID: "lft", Name: "Liver Function Test", Category: "Biochemistry",
		Price: 1200, SampleTypeID: "serum",
		Parameters: []TestParameter{
			{ID: "alt", TestID: "lft", Name: "ALT (SGPT)", Unit: "U/L", ReferenceRange: "7 - 56"},
			{ID: "ast", TestID: "lft", Name: "AST (SGOT)", Unit: "U/L", ReferenceRange: "10 - 40"},
			{ID: "alp", TestID: "lft", Name: "Alkaline Phosphatase", Unit: "U/L", ReferenceRange: "44 - 147"},
			{ID: "bili", TestID: "lft", Name: "Total Bilirubin", Unit: "mg/dL", ReferenceRange: "0.1 - 1.2"},
		},
	},
	{
		ID: "tsh", Name: "Thyroid Stimulating Hormone", Category: "Hormones",
		Price: 900, SampleTypeID: "serum",
		Parameters: []TestParameter{
			{ID: "tsh_val", TestID: "tsh", Name: "TSH", Unit: "mIU/L", ReferenceRange: "0.4 - 4.0"},
		},
	},
	{
		ID: "hba1c", Name: "HbA1c Glycated Hemoglobin", Category: "Biochemistry",
		Price: 1100, SampleTypeID: "edta",
		Parameters: []TestParameter{
			{ID: "hba1c_val", TestID: "hba1c", Name: "HbA1c Level", Unit: "%", ReferenceRange: "< 5.7"},
		},
	},
	{
		ID: "urine_rm", Name: "Urine R/M", Category: "Clinical Pathology",
		Price: 400, SampleTypeID: "urine",
		Parameters: []TestParameter{
			{ID: "color", TestID: "urine_rm", Name: "Color", ReferenceRange: "Pale Yellow"},
			{ID: "ph", TestID: "urine_rm", Name: "pH", ReferenceRange: "4.5 - 8.0"},
			{ID: "protein", TestID: "urine_rm", Name: "Protein", ReferenceRange: "Negative"},
		},
	},
	{
		ID: "electrolytes", Name: "Serum Electrolytes", Category: "Biochemistry",
		Price: 1000, SampleTypeID: "serum",
		Parameters: []TestParameter{
			{ID: "na", TestID: "electrolytes", Name: "Sodium (Na+)", Unit: "mEq/L", ReferenceRange: "135 - 145"},
			{ID: "k", TestID: "electrolytes", Name: "Potassium (K+)", Unit: "mEq/L", ReferenceRange: "3.5 - 5.1"},
			{ID: "cl", TestID: "electrolytes", Name: "Chloride (Cl-)", Unit: "mEq/L", ReferenceRange: "96 - 106"},
		},
	},
	{
		ID: "vit_d", Name: "25-OH Vitamin D", Category: "Special Chemistry",
		Price: 3500, SampleTypeID: "serum",
		Parameters: []TestParameter{
			{ID: "vit_d_val", TestID: "vit_d", Name: "Vitamin D Total", Unit: "ng/mL", ReferenceRange: "30 - 100"},
		},
	},
	{
		ID: "vit_b12", Name: "Vitamin B12", Category: "Special Chemistry",
		Price: 2800, SampleTypeID: "serum",
		Parameters: []TestParameter{
			{ID: "b12_val", TestID: "vit_b12", Name: "Vitamin B12", Unit: "pg/mL", ReferenceRange: "200 - 900"},
		},
	},
}
