package scatsparser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg"
	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/history"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
	"go.uber.org/zap"
)

var (
	siteColumns      = []string{"SCATS Number", "SCAT number", "SCATS"}
	latitudeColumns  = []string{"NB_Latitude", "Latitude", "Lat"}
	longitudeColumns = []string{"NB_Longitude", "Longitude", "Lon"}
	dateColumns      = []string{"Date"}
)

type ScatsParser struct {
	log *zap.Logger
}

func NewScatsParser(log *zap.Logger) *ScatsParser {
	return &ScatsParser{log: log}
}

// parseSite. site numbers may be written as floats ("3001.0") by spreadsheet exports. empty or NaN means absent (0).
func parseSite(s string) (da.SiteID, error) {
	if s == "" {
		return 0, nil
	}
	f, err := util.StringToFloat64(s)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, nil
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("site number %q is not an integer", s)
	}
	return da.SiteID(f), nil
}

// ReadNeighborTable. read the intersection table: site number, coordinates and one neighbor column per compass direction
func (p *ScatsParser) ReadNeighborTable(filename string) ([]da.NeighborRow, error) {
	f, err := open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.parseNeighborTable(f)
}

func (p *ScatsParser) parseNeighborTable(r io.Reader) ([]da.NeighborRow, error) {
	cr := newCSVReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	siteCol, ok := h.find(siteColumns...)
	if !ok {
		return nil, fmt.Errorf("%w: missing site number column", da.ErrMalformedGraph)
	}
	latCol, okLat := h.find(latitudeColumns...)
	lonCol, okLon := h.find(longitudeColumns...)
	if !okLat || !okLon {
		return nil, fmt.Errorf("%w: missing coordinate columns", da.ErrMalformedGraph)
	}

	neighborCols := [da.NUM_DIRECTIONS]int{}
	for i, dir := range pkg.NEIGHBOR_DIRECTIONS {
		col, ok := h.find(dir+" Neighbor", dir)
		if !ok {
			col = -1
		}
		neighborCols[i] = col
	}

	rows := make([]da.NeighborRow, 0)
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", da.ErrMalformedGraph, line, err)
		}

		site, err := parseSite(field(record, siteCol))
		if err != nil || site <= 0 {
			return nil, fmt.Errorf("%w: line %d: invalid site number %q", da.ErrMalformedGraph, line, field(record, siteCol))
		}
		lat, errLat := strconv.ParseFloat(field(record, latCol), 64)
		lon, errLon := strconv.ParseFloat(field(record, lonCol), 64)
		if errLat != nil || errLon != nil {
			return nil, fmt.Errorf("%w: line %d: invalid coordinate for site %d", da.ErrMalformedGraph, line, site)
		}

		row := da.NeighborRow{Site: site, Lat: lat, Lon: lon}
		for i, col := range neighborCols {
			neighbor, err := parseSite(field(record, col))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid %s neighbor %q", da.ErrMalformedGraph, line,
					pkg.NEIGHBOR_DIRECTIONS[i], field(record, col))
			}
			row.Neighbors[i] = neighbor
		}
		rows = append(rows, row)
	}

	p.log.Info("neighbor table read", zap.Int("intersections", len(rows)))
	return rows, nil
}

// ReadHistory. read per-day detector counts: site number, date (d/M/yyyy) and one V column per interval.
// unparseable flow fields are kept as NaN and a row with an unparseable site number is skipped.
func (p *ScatsParser) ReadHistory(filename string) ([]history.FlowRecord, error) {
	f, err := open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.parseHistory(f)
}

func (p *ScatsParser) parseHistory(r io.Reader) ([]history.FlowRecord, error) {
	cr := newCSVReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	siteCol, ok := h.find(siteColumns...)
	if !ok {
		return nil, fmt.Errorf("%w: missing site number column", history.ErrMalformedHistory)
	}
	dateCol, ok := h.find(dateColumns...)
	if !ok {
		return nil, fmt.Errorf("%w: missing date column", history.ErrMalformedHistory)
	}

	flowCols := make([]int, 0, 96)
	for i := 0; ; i++ {
		col, ok := h.find(history.FlowColumn(i))
		if !ok {
			break
		}
		flowCols = append(flowCols, col)
	}
	if len(flowCols) == 0 {
		return nil, fmt.Errorf("%w: missing flow columns V00..", history.ErrMalformedHistory)
	}

	records := make([]history.FlowRecord, 0)
	line := 1
	malformedFlows := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			p.log.Warn("skipping unreadable history row", zap.Int("line", line), zap.Error(err))
			continue
		}

		site, err := parseSite(field(record, siteCol))
		if err != nil || site <= 0 {
			p.log.Warn("skipping history row with invalid site number", zap.Int("line", line),
				zap.String("site", field(record, siteCol)))
			continue
		}

		flows := make([]float64, len(flowCols))
		for i, col := range flowCols {
			v, err := strconv.ParseFloat(field(record, col), 64)
			if err != nil || v < 0 {
				v = math.NaN()
				malformedFlows++
			}
			flows[i] = v
		}

		records = append(records, history.FlowRecord{
			Site:  site,
			Date:  field(record, dateCol),
			Flows: flows,
		})
	}

	if malformedFlows > 0 {
		p.log.Warn("history contains unparseable flow fields", zap.Int("fields", malformedFlows))
	}
	p.log.Info("history read", zap.Int("records", len(records)), zap.Int("intervals", len(flowCols)))
	return records, nil
}

// ReadFloatColumn. read one numeric column, empty fields are 0
func (p *ScatsParser) ReadFloatColumn(filename, column string) ([]float64, error) {
	f, err := open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseFloatColumn(f, column)
}

func parseFloatColumn(r io.Reader, column string) ([]float64, error) {
	cr := newCSVReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	col, ok := h.find(column)
	if !ok {
		return nil, fmt.Errorf("missing column %q", column)
	}

	values := make([]float64, 0)
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s := field(record, col)
		if s == "" || strings.EqualFold(s, "nan") {
			values = append(values, 0)
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s value %q", line, column, s)
		}
		values = append(values, v)
	}
	return values, nil
}
