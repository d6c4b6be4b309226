package dicomseries

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"bidspatch/internal/logging"
)

// csaSeriesHeaderTag is the Siemens private element carrying the CSA series
// header, which embeds the sequence protocol as ASCII text.
var csaSeriesHeaderTag = tag.Tag{Group: 0x0029, Element: 0x1020}

// mtFlipAnglePattern matches the free WIP parameter line that Siemens MT
// sequences use for the MT pulse flip angle.
var mtFlipAnglePattern = regexp.MustCompile(`sWipMemBlock\.adFree\[2\]\t = \t(.+?)\n`)

// Resolver lazily produces the MT flip angle for a series. The bool reports
// whether a value was resolvable; absence is not an error.
type Resolver func() (float64, bool, error)

// FlipAngleResolver returns a Resolver reading the first file of the series.
// A series with no files resolves to no value.
func FlipAngleResolver(series Series, logger *slog.Logger) Resolver {
	return func() (float64, bool, error) {
		if len(series.FilePaths) == 0 {
			return 0, false, nil
		}
		return MTFlipAngle(series.FilePaths[0], logger)
	}
}

// MTFlipAngle reads the MT flip angle from one DICOM file. A missing CSA
// header or missing parameter line yields no value silently; a value that is
// not numeric yields no value with a warning. Only unreadable files produce an
// error.
func MTFlipAngle(path string, logger *slog.Logger) (float64, bool, error) {
	dataset, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return 0, false, fmt.Errorf("parse dicom %s: %w", path, err)
	}

	element, err := dataset.FindElementByTag(csaSeriesHeaderTag)
	if err != nil || element == nil {
		return 0, false, nil
	}

	return flipAngleFromHeader(headerText(element.Value), logger)
}

func flipAngleFromHeader(text string, logger *slog.Logger) (float64, bool, error) {
	match := mtFlipAnglePattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false, nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(match[1]), 64)
	if err != nil {
		if logger == nil {
			logger = logging.NewNop()
		}
		logger.Warn(
			"expected numeric MT flip angle",
			logging.String("value", match[1]),
		)
		return 0, false, nil
	}
	return value, true, nil
}

// headerText renders the CSA element payload as searchable text. The element
// is private, so the library surfaces it as raw bytes or as string fragments
// depending on the transfer syntax.
func headerText(value dicom.Value) string {
	if value == nil {
		return ""
	}
	switch v := value.GetValue().(type) {
	case []byte:
		return string(v)
	case []string:
		return strings.Join(v, "\n")
	default:
		return fmt.Sprint(v)
	}
}
