package loggamma

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/ecanvass/hypergeom/internal/decmath"
)

// Pinned coefficient vectors. GenerateLanczos and GenerateSpouge
// rebuild these from first principles; a golden test locks generated
// output to the literals so the tables and the generator cannot drift
// apart.
const (
	// DefaultLanczosTerms is the pinned Lanczos table length.
	DefaultLanczosTerms = 13
	// DefaultSpougeTerms is the pinned Spouge table length, which is
	// also the Spouge shift parameter a.
	DefaultSpougeTerms = 20

	lanczosShift = "6.02468"
)

var lanczosLiterals = [DefaultLanczosTerms]string{
	"2.50662827463100027016561693547825754072337540757200082367",
	"589.5105778528748081083440754114017970881744165562870628551",
	"-888.02534533501237172652316346971976076979770518225084992",
	"395.838757159176115722783354674181284804742524064707536",
	"-53.21395413703462595543160513282731562408231287715217",
	"1.2771826424117897170129599091132309034574601465637",
	"-0.0004046170655169348179547621938348030520821860594",
	"-0.000007347585209589689589422864286753037601670817",
	"0.000008208805239871217130461324758555114442513669",
	"-0.000005159542415359044989159951746415314096492689",
	"0.000002319630748531474375016814467281014423862250",
	"-6.67124339402896748175608182929918031465333E-7",
	"9.06038883356544784242812502552213897255901E-8",
}

var spougeLiterals = [DefaultSpougeTerms]string{
	"2.506628274631000502415765284811045253006986740609938316629923576",
	"777986313.1091454928811402005400108162295251348113128426334961852",
	"-5014289818.386629570797576541967490103652258514832569674279751820",
	"14391249419.00289373155156170253309810152458462806088822279545592",
	"-24265005794.6668308801208968281605470912586269268831951251701441",
	"26706480135.5683394082012008772502119322670635833810445328827937",
	"-20167204252.3651678703249776522516454209876558668604305771976457",
	"10693689215.66914860975029079126690660069469100630653881202448081",
	"-4008321901.881434750140706868171689145285101201137451110548606052",
	"1055739088.101602099423513581371922881638807456278410924429883147",
	"-191947202.1477629664251405783223503351353012277209941617708328718",
	"23357892.39307511798087638904470551337994322140297269819420234213",
	"-1814408.148359252731818439838993707677526340125003219834376779638",
	"83839.73741140680219453398758050281620165654670033425860998174394",
	"-2072.661857059051124169469319593967128917693485708949680126818223",
	"23.23427473123225253219821352451089625565552416728329648391674089",
	"-0.08966195046443543309219652814526417878744371424147365192636459614",
	"0.00007157552707474602995541065998770807262371282572284672472244648859",
	"-3.850750431615709437581025834192410706598703829407022527230216420E-9",
	"4.245740647764882878237117834434502631724174404640504624072297716E-16",
}

func parseTable(lits []string) []*apd.Decimal {
	out := make([]*apd.Decimal, len(lits))
	for i, s := range lits {
		out[i] = decmath.MustParse(s)
	}
	return out
}

// LanczosShift returns a fresh copy of the pinned shift parameter g.
func LanczosShift() *apd.Decimal {
	return decmath.MustParse(lanczosShift)
}

// LanczosTable returns a fresh copy of the pinned Lanczos
// coefficients p₀…p₁₂.
func LanczosTable() []*apd.Decimal {
	return parseTable(lanczosLiterals[:])
}

// SpougeTable returns a fresh copy of the pinned Spouge coefficients
// c₀…c₁₉.
func SpougeTable() []*apd.Decimal {
	return parseTable(spougeLiterals[:])
}
