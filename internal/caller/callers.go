package caller

// MutectRecord holds a MuTect call. Depth and allele counts come from the
// tumor sample's FORMAT DP and AD; the reported FA wins over AD when present.
type MutectRecord struct {
	FilterStatus string
	DP           int64
	RefDepth     int64
	AltDepth     int64
	FA           string
}

func (r *MutectRecord) Caller() string { return Mutect }
func (r *MutectRecord) AlleleFraction() float64 {
	if f, ok := parseFraction(r.FA); ok {
		return f
	}
	return fraction(r.AltDepth, r.DP)
}
func (r *MutectRecord) Depth() int64 { return r.DP }
func (r *MutectRecord) Filter() string { return r.FilterStatus }
func (r *MutectRecord) sealed() {}

func (r *MutectRecord) Fields() map[string]string {
	m := commonFields(r)
	m["ref_depth"] = formatInt(r.RefDepth)
	m["alt_depth"] = formatInt(r.AltDepth)
	m["FA"] = orNone(r.FA)
	return m
}

// VarDictRecord holds a VarDict call. Depth and variant depth are INFO DP and
// VD; the reported AF wins over VD/DP when present.
type VarDictRecord struct {
	FilterStatus string
	DP           int64
	VD           int64
	AF           string
	MSI          string
	Bias         string
}

func (r *VarDictRecord) Caller() string { return VarDict }
func (r *VarDictRecord) AlleleFraction() float64 {
	if f, ok := parseFraction(r.AF); ok {
		return f
	}
	return fraction(r.VD, r.DP)
}
func (r *VarDictRecord) Depth() int64 { return r.DP }
func (r *VarDictRecord) Filter() string { return r.FilterStatus }
func (r *VarDictRecord) sealed() {}

func (r *VarDictRecord) Fields() map[string]string {
	m := commonFields(r)
	m["VD"] = formatInt(r.VD)
	m["AF"] = orNone(r.AF)
	m["MSI"] = orNone(r.MSI)
	m["BIAS"] = orNone(r.Bias)
	return m
}

// FreeBayesRecord holds a FreeBayes call. Allele fraction is INFO AO over DP.
type FreeBayesRecord struct {
	FilterStatus string
	DP           int64
	AO           int64
	RO           int64
}

func (r *FreeBayesRecord) Caller() string { return FreeBayes }
func (r *FreeBayesRecord) AlleleFraction() float64 { return fraction(r.AO, r.DP) }
func (r *FreeBayesRecord) Depth() int64 { return r.DP }
func (r *FreeBayesRecord) Filter() string { return r.FilterStatus }
func (r *FreeBayesRecord) sealed() {}

func (r *FreeBayesRecord) Fields() map[string]string {
	m := commonFields(r)
	m["AO"] = formatInt(r.AO)
	m["RO"] = formatInt(r.RO)
	return m
}

// ScalpelRecord holds a Scalpel indel call from FORMAT DP and AD.
type ScalpelRecord struct {
	FilterStatus string
	DP           int64
	RefDepth     int64
	AltDepth     int64
	Zygosity     string
}

func (r *ScalpelRecord) Caller() string { return Scalpel }
func (r *ScalpelRecord) AlleleFraction() float64 { return fraction(r.AltDepth, r.DP) }
func (r *ScalpelRecord) Depth() int64 { return r.DP }
func (r *ScalpelRecord) Filter() string { return r.FilterStatus }
func (r *ScalpelRecord) sealed() {}

func (r *ScalpelRecord) Fields() map[string]string {
	m := commonFields(r)
	m["ref_depth"] = formatInt(r.RefDepth)
	m["alt_depth"] = formatInt(r.AltDepth)
	m["ZYG"] = orNone(r.Zygosity)
	return m
}

// PlatypusRecord holds a Platypus call. Depth is INFO TC, variant reads TR.
type PlatypusRecord struct {
	FilterStatus string
	TC           int64
	TR           int64
	FR           string
}

func (r *PlatypusRecord) Caller() string { return Platypus }
func (r *PlatypusRecord) AlleleFraction() float64 { return fraction(r.TR, r.TC) }
func (r *PlatypusRecord) Depth() int64 { return r.TC }
func (r *PlatypusRecord) Filter() string { return r.FilterStatus }
func (r *PlatypusRecord) sealed() {}

func (r *PlatypusRecord) Fields() map[string]string {
	m := commonFields(r)
	m["TC"] = formatInt(r.TC)
	m["TR"] = formatInt(r.TR)
	m["FR"] = orNone(r.FR)
	return m
}

// PindelRecord holds a Pindel call from FORMAT DP and AD.
type PindelRecord struct {
	FilterStatus string
	DP           int64
	RefDepth     int64
	AltDepth     int64
	SVType       string
	SVLen        string
}

func (r *PindelRecord) Caller() string { return Pindel }
func (r *PindelRecord) AlleleFraction() float64 { return fraction(r.AltDepth, r.DP) }
func (r *PindelRecord) Depth() int64 { return r.DP }
func (r *PindelRecord) Filter() string { return r.FilterStatus }
func (r *PindelRecord) sealed() {}

func (r *PindelRecord) Fields() map[string]string {
	m := commonFields(r)
	m["ref_depth"] = formatInt(r.RefDepth)
	m["alt_depth"] = formatInt(r.AltDepth)
	m["SVTYPE"] = orNone(r.SVType)
	m["SVLEN"] = orNone(r.SVLen)
	return m
}
