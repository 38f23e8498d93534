// Package parse turns a directory of GTFS text tables into a
// model.FeedSet. Individual files are handled by the Parse<Table>
// functions in this package; ParseDirectory is the entry point that
// wires them together in GTFS's dependency order (agency before
// routes, routes/calendar before trips, stops/trips before
// stop_times) and enforces GTFS's cross-file required-reference rules.
package parse

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"github.com/transitcore/raptor/model"
)

func init() {
	// LazyCSVReader survives GTFS feeds that use quotes sloppily;
	// bom.NewReader strips a leading UTF-8 BOM if present.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})
}

var requiredFiles = []string{
	"agency.txt",
	"routes.txt",
	"stops.txt",
	"trips.txt",
	"stop_times.txt",
}

var optionalFiles = []string{
	"calendar.txt",
	"calendar_dates.txt",
	"shapes.txt",
	"transfers.txt",
}

// ParseDirectory reads every GTFS table out of dir and assembles a
// model.FeedSet. It also returns the hex-encoded sha256 digest of the
// concatenated bytes of every file read, used by the lifecycle manager
// to detect an unchanged feed without rebuilding the schedule index
// (spec.md §5).
func ParseDirectory(dir string) (*model.FeedSet, string, error) {
	paths := map[string]string{}
	for _, name := range requiredFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			return nil, "", errors.Errorf("missing required file %s", name)
		}
		paths[name] = path
	}
	for _, name := range optionalFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			paths[name] = path
		}
	}
	if paths["calendar.txt"] == "" && paths["calendar_dates.txt"] == "" {
		return nil, "", errors.New("missing both calendar.txt and calendar_dates.txt")
	}

	digest := sha256.New()
	open := func(name string) (io.ReadCloser, error) {
		path, ok := paths[name]
		if !ok {
			return nil, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", name)
		}
		if _, err := io.Copy(digest, f); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "hashing %s", name)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "rewinding %s", name)
		}
		return f, nil
	}

	fs := &model.FeedSet{}

	agencyFile, err := open("agency.txt")
	if err != nil {
		return nil, "", err
	}
	defer agencyFile.Close()
	agencies, timezone, err := ParseAgency(fs, agencyFile)
	if err != nil {
		return nil, "", errors.Wrap(err, "parsing agency.txt")
	}
	fs.Timezone = timezone

	routesFile, err := open("routes.txt")
	if err != nil {
		return nil, "", err
	}
	defer routesFile.Close()
	routes, err := ParseRoutes(fs, routesFile, agencies)
	if err != nil {
		return nil, "", errors.Wrap(err, "parsing routes.txt")
	}

	services := map[string]bool{}
	if calendarFile, err := open("calendar.txt"); err != nil {
		return nil, "", err
	} else if calendarFile != nil {
		defer calendarFile.Close()
		services, err = ParseCalendar(fs, calendarFile)
		if err != nil {
			return nil, "", errors.Wrap(err, "parsing calendar.txt")
		}
	}
	if calendarDatesFile, err := open("calendar_dates.txt"); err != nil {
		return nil, "", err
	} else if calendarDatesFile != nil {
		defer calendarDatesFile.Close()
		cdServices, err := ParseCalendarDates(fs, calendarDatesFile)
		if err != nil {
			return nil, "", errors.Wrap(err, "parsing calendar_dates.txt")
		}
		for id := range cdServices {
			services[id] = true
		}
	}

	stopsFile, err := open("stops.txt")
	if err != nil {
		return nil, "", err
	}
	defer stopsFile.Close()
	stops, err := ParseStops(fs, stopsFile)
	if err != nil {
		return nil, "", errors.Wrap(err, "parsing stops.txt")
	}

	tripsFile, err := open("trips.txt")
	if err != nil {
		return nil, "", err
	}
	defer tripsFile.Close()
	trips, err := ParseTrips(fs, tripsFile, routes, services)
	if err != nil {
		return nil, "", errors.Wrap(err, "parsing trips.txt")
	}

	stopTimesFile, err := open("stop_times.txt")
	if err != nil {
		return nil, "", err
	}
	defer stopTimesFile.Close()
	if err := ParseStopTimes(fs, stopTimesFile, trips, stops); err != nil {
		return nil, "", errors.Wrap(err, "parsing stop_times.txt")
	}

	if shapesFile, err := open("shapes.txt"); err != nil {
		return nil, "", err
	} else if shapesFile != nil {
		defer shapesFile.Close()
		if err := ParseShapes(fs, shapesFile); err != nil {
			return nil, "", errors.Wrap(err, "parsing shapes.txt")
		}
	}

	if transfersFile, err := open("transfers.txt"); err != nil {
		return nil, "", err
	} else if transfersFile != nil {
		defer transfersFile.Close()
		if err := ParseTransfers(fs, transfersFile, stops); err != nil {
			return nil, "", errors.Wrap(err, "parsing transfers.txt")
		}
	}

	return fs, hex.EncodeToString(digest.Sum(nil)), nil
}
