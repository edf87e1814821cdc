package domain

import "fmt"

// Vorgangstyp classifies a legislative procedure.
type Vorgangstyp string

const (
	VorgangstypGGEinspruch  Vorgangstyp = "gg-einspruch"
	VorgangstypGGZustimmung Vorgangstyp = "gg-zustimmung"
	VorgangstypGGLandParl   Vorgangstyp = "gg-land-parl"
	VorgangstypGGLandVolk   Vorgangstyp = "gg-land-volk"
	VorgangstypBWEinsatz    Vorgangstyp = "bw-einsatz"
	VorgangstypSonstig      Vorgangstyp = "sonstig"
)

func (t Vorgangstyp) Valid() bool {
	switch t {
	case VorgangstypGGEinspruch, VorgangstypGGZustimmung, VorgangstypGGLandParl,
		VorgangstypGGLandVolk, VorgangstypBWEinsatz, VorgangstypSonstig:
		return true
	}
	return false
}

// Stationstyp classifies a stage within a procedure.
type Stationstyp string

const (
	StationstypPreparlRegent  Stationstyp = "preparl-regent"
	StationstypPreparlEckpup  Stationstyp = "preparl-eckpup"
	StationstypPreparlRegbsl  Stationstyp = "preparl-regbsl"
	StationstypPreparlVbegde  Stationstyp = "preparl-vbegde"
	StationstypParlInitiativ  Stationstyp = "parl-initiativ"
	StationstypParlAusschber  Stationstyp = "parl-ausschber"
	StationstypParlVollvlsgn  Stationstyp = "parl-vollvlsgn"
	StationstypParlAkzeptanz  Stationstyp = "parl-akzeptanz"
	StationstypParlAblehnung  Stationstyp = "parl-ablehnung"
	StationstypParlZurueckgz  Stationstyp = "parl-zurueckgz"
	StationstypParlGGEntwurf  Stationstyp = "parl-ggentwurf"
	StationstypPostparlVesja  Stationstyp = "postparl-vesja"
	StationstypPostparlVesne  Stationstyp = "postparl-vesne"
	StationstypPostparlGsblt  Stationstyp = "postparl-gsblt"
	StationstypPostparlKraft  Stationstyp = "postparl-kraft"
	StationstypSonstig        Stationstyp = "sonstig"
)

func (t Stationstyp) Valid() bool {
	switch t {
	case StationstypPreparlRegent, StationstypPreparlEckpup, StationstypPreparlRegbsl,
		StationstypPreparlVbegde, StationstypParlInitiativ, StationstypParlAusschber,
		StationstypParlVollvlsgn, StationstypParlAkzeptanz, StationstypParlAblehnung,
		StationstypParlZurueckgz, StationstypParlGGEntwurf, StationstypPostparlVesja,
		StationstypPostparlVesne, StationstypPostparlGsblt, StationstypPostparlKraft,
		StationstypSonstig:
		return true
	}
	return false
}

// Doktyp classifies a parliamentary document.
type Doktyp string

const (
	DoktypEntwurf         Doktyp = "entwurf"
	DoktypPreparlEntwurf  Doktyp = "preparl-entwurf"
	DoktypAntrag          Doktyp = "antrag"
	DoktypAnfrage         Doktyp = "anfrage"
	DoktypAntwort         Doktyp = "antwort"
	DoktypMitteilung      Doktyp = "mitteilung"
	DoktypBeschlussempf   Doktyp = "beschlussempf"
	DoktypStellungnahme   Doktyp = "stellungnahme"
	DoktypPlenarProtokoll Doktyp = "plenar-protokoll"
	DoktypTops            Doktyp = "tops"
	DoktypRedeprotokoll   Doktyp = "redeprotokoll"
	DoktypSonstig         Doktyp = "sonstig"
)

func (t Doktyp) Valid() bool {
	switch t {
	case DoktypEntwurf, DoktypPreparlEntwurf, DoktypAntrag, DoktypAnfrage,
		DoktypAntwort, DoktypMitteilung, DoktypBeschlussempf, DoktypStellungnahme,
		DoktypPlenarProtokoll, DoktypTops, DoktypRedeprotokoll, DoktypSonstig:
		return true
	}
	return false
}

// Parlament identifies the parliament a committee belongs to.
type Parlament string

const (
	ParlamentBT Parlament = "BT"
	ParlamentBR Parlament = "BR"
	ParlamentBV Parlament = "BV"
	ParlamentEK Parlament = "EK"
	ParlamentBB Parlament = "BB"
	ParlamentBY Parlament = "BY"
	ParlamentBE Parlament = "BE"
	ParlamentHB Parlament = "HB"
	ParlamentHH Parlament = "HH"
	ParlamentHE Parlament = "HE"
	ParlamentMV Parlament = "MV"
	ParlamentNI Parlament = "NI"
	ParlamentNW Parlament = "NW"
	ParlamentRP Parlament = "RP"
	ParlamentSL Parlament = "SL"
	ParlamentSN Parlament = "SN"
	ParlamentST Parlament = "ST"
	ParlamentSH Parlament = "SH"
	ParlamentTH Parlament = "TH"
	ParlamentBW Parlament = "BW"
)

func (p Parlament) Valid() bool {
	switch p {
	case ParlamentBT, ParlamentBR, ParlamentBV, ParlamentEK, ParlamentBB,
		ParlamentBY, ParlamentBE, ParlamentHB, ParlamentHH, ParlamentHE,
		ParlamentMV, ParlamentNI, ParlamentNW, ParlamentRP, ParlamentSL,
		ParlamentSN, ParlamentST, ParlamentSH, ParlamentTH, ParlamentBW:
		return true
	}
	return false
}

// VgIdentTyp tags an external identifier of a procedure.
type VgIdentTyp string

const (
	VgIdentTypInitdrucks VgIdentTyp = "initdrucks"
	VgIdentTypVorgnr     VgIdentTyp = "vorgnr"
	VgIdentTypAPIID      VgIdentTyp = "api-id"
	VgIdentTypSonstig    VgIdentTyp = "sonstig"
)

func (t VgIdentTyp) Valid() bool {
	switch t {
	case VgIdentTypInitdrucks, VgIdentTypVorgnr, VgIdentTypAPIID, VgIdentTypSonstig:
		return true
	}
	return false
}

// APIScope is the privilege level of an API key.
type APIScope string

const (
	ScopeKeyAdder  APIScope = "keyadder"
	ScopeAdmin     APIScope = "admin"
	ScopeCollector APIScope = "collector"
)

func (s APIScope) Valid() bool {
	_, err := ParseAPIScope(string(s))
	return err == nil
}

func ParseAPIScope(s string) (APIScope, error) {
	switch APIScope(s) {
	case ScopeKeyAdder, ScopeAdmin, ScopeCollector:
		return APIScope(s), nil
	}
	return "", fmt.Errorf("unknown api scope %q", s)
}

// EntityKind names the entity table an attribution touch belongs to.
type EntityKind string

const (
	KindVorgang  EntityKind = "vorgang"
	KindStation  EntityKind = "station"
	KindDokument EntityKind = "dokument"
	KindSitzung  EntityKind = "sitzung"
)
