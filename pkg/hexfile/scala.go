package hexfile

import (
	"fmt"
	"strings"

	"github.com/Manu343726/rvbench/pkg/hw/rv32i"
)

// Default name of the generated Scala value
const DefaultScalaName = "primeBench"

// Renders the words as a Scala Seq[UInt] literal for the hardware project's
// program tables. An address comment is emitted every 4 instructions
func ScalaSeq(words []rv32i.Word, name string, source string) string {
	if name == "" {
		name = DefaultScalaName
	}

	lines := make([]string, 0, len(words)+len(words)/4+4)
	lines = append(lines,
		fmt.Sprintf("  // Program converted from: %v", source),
		fmt.Sprintf("  // Total instructions: %d", len(words)),
		fmt.Sprintf("  val %v = Seq(", name),
	)

	for i, w := range words {
		if i%4 == 0 {
			lines = append(lines, fmt.Sprintf("    // Address %d", i*rv32i.WordBytes))
		}

		comma := ","
		if i == len(words)-1 {
			comma = ""
		}

		lines = append(lines, fmt.Sprintf(`    "h%v".U(32.W)%v`, FormatWord(w), comma))
	}

	lines = append(lines, "  )")

	return strings.Join(lines, "\n")
}
