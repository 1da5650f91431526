package soname

// Approximate multilib categories by ELF machine name, as the package
// manager's linkage map does when no category was recorded at build time.
// Architectures missing from the table pass through unchanged; this is a
// best-effort approximation, not authoritative detection.
var multilibByArch = map[string]string{
	"386":         "x86_32",
	"68K":         "m68k_32",
	"AARCH64":     "arm_64",
	"ALPHA":       "alpha_64",
	"ARM":         "arm_32",
	"IA_64":       "ia64_64",
	"MIPS":        "mips_o32",
	"PARISC":      "hppa_64",
	"PPC":         "ppc_32",
	"PPC64":       "ppc_64",
	"S390":        "s390_64",
	"SH":          "sh_32",
	"SPARC":       "sparc_32",
	"SPARC32PLUS": "sparc_32",
	"SPARCV9":     "sparc_64",
	"X86_64":      "x86_64",
}

// MultilibCategory maps an architecture tag to its multilib category.
func MultilibCategory(arch string) string {
	if cat, ok := multilibByArch[arch]; ok {
		return cat
	}
	return arch
}
