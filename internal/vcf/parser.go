package vcf

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/brentp/vcfgo"
	"go.uber.org/zap"
)

// Parser reads variants from a VCF file.
type Parser struct {
	rdr        *vcfgo.Reader
	file       *os.File
	gzipReader *gzip.Reader
	screen     *lineScreen
	path       string
	lineNumber int
	logger     *zap.Logger
}

// lineScreen feeds VCF text to the record reader one line at a time. It drops
// blank lines and stops at the first data line the reader cannot split into
// the fixed columns. It also remembers the file line of every data line it
// passes on, in order.
type lineScreen struct {
	r     *bufio.Reader
	path  string
	buf   []byte
	line  int
	lines []int
	data  bool // past the #CHROM line
	err   *ParseError
}

func (s *lineScreen) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		if s.err != nil {
			return 0, io.EOF
		}
		line, err := s.r.ReadBytes('\n')
		if len(line) > 0 {
			s.line++
			s.check(line)
		}
		if err != nil && len(s.buf) == 0 {
			return 0, err
		}
		if err != nil {
			break
		}
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *lineScreen) check(line []byte) {
	trimmed := bytes.TrimRight(line, "\r\n")
	switch {
	case len(bytes.TrimSpace(trimmed)) == 0:
		return
	case trimmed[0] == '#':
		if !s.data {
			s.buf = line
			s.data = bytes.HasPrefix(trimmed, []byte("#CHROM"))
		}
		return
	}
	switch cols := bytes.Count(trimmed, []byte{'\t'}) + 1; {
	case cols < 8:
		s.err = &ParseError{Path: s.path, Line: s.line,
			Message: fmt.Sprintf("expected at least 8 columns, got %d", cols)}
	case cols == 9:
		s.err = &ParseError{Path: s.path, Line: s.line, Message: "FORMAT column without sample columns"}
	default:
		s.buf = line
		s.lines = append(s.lines, s.line)
	}
}

// next pops the file line of the data line the reader consumed last.
func (s *lineScreen) next() int {
	if len(s.lines) == 0 {
		return 0
	}
	n := s.lines[0]
	s.lines = s.lines[1:]
	return n
}

// NewParser creates a new VCF parser for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files.
func NewParser(path string) (*Parser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	if _, err := io.ReadFull(file, buf); err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	p := &Parser{file: file, path: path, logger: zap.NewNop()}

	var r io.Reader = file
	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r = p.gzipReader
	}

	if err := p.open(r); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{path: "-", logger: zap.NewNop()}
	if err := p.open(r); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) open(r io.Reader) error {
	p.screen = &lineScreen{r: bufio.NewReader(r), path: p.path}
	rdr, err := vcfgo.NewReader(p.screen, false)
	if err != nil {
		if p.screen.err != nil {
			return p.screen.err
		}
		if rdr == nil {
			return &ParseError{Path: p.path, Message: err.Error()}
		}
		// Header problems that still leave a usable reader are not fatal.
		p.logger.Debug("vcf header warnings", zap.String("path", p.path), zap.Error(err))
		rdr.Clear()
	}
	p.rdr = rdr
	return nil
}

// SetLogger sets the logger used for reader warnings.
func (p *Parser) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Next reads the next variant from the VCF file.
// Returns nil, nil when there are no more variants. A malformed data line
// is a *ParseError carrying its file line.
func (p *Parser) Next() (v *Variant, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, &ParseError{Path: p.path, Line: p.screen.next(),
				Message: fmt.Sprintf("unreadable record: %v", r)}
		}
	}()

	rv := p.rdr.Read()
	if rv == nil {
		if p.screen.err != nil {
			return nil, p.screen.err
		}
		if err := p.rdr.Error(); err != nil {
			p.logger.Debug("vcf reader warnings", zap.String("path", p.path), zap.Error(err))
			p.rdr.Clear()
		}
		return nil, nil
	}
	line := p.screen.next()
	if err := p.rdr.Error(); err != nil {
		p.logger.Debug("vcf record warnings",
			zap.String("path", p.path),
			zap.Int("line", line),
			zap.Error(err))
		p.rdr.Clear()
	}
	p.lineNumber = line

	if rv.Pos == 0 {
		return nil, &ParseError{Path: p.path, Line: p.lineNumber, Message: "invalid position: 0"}
	}

	v = &Variant{
		Chrom:  rv.Chromosome,
		Pos:    int64(rv.Pos),
		ID:     rv.Id(),
		Ref:    rv.Ref(),
		Alts:   rv.Alt(),
		Filter: rv.Filter,
		Info:   parseInfo(string(rv.Info().Bytes())),
		Line:   int64(line),
	}
	for _, s := range rv.Samples {
		v.Samples = append(v.Samples, sampleFields(s))
	}
	return v, nil
}

// sampleFields flattens a parsed genotype back into FORMAT key/value pairs.
// The reader lifts some keys (DP) into typed fields.
func sampleFields(s *vcfgo.SampleGenotype) map[string]string {
	fields := make(map[string]string)
	if s == nil {
		return fields
	}
	for k, val := range s.Fields {
		fields[k] = val
	}
	if _, ok := fields["DP"]; !ok && s.DP > 0 {
		fields["DP"] = strconv.Itoa(s.DP)
	}
	return fields
}

// InfoDescription returns the Description of an INFO header line.
func (p *Parser) InfoDescription(id string) (string, bool) {
	info, ok := p.rdr.Header.Infos[id]
	if !ok || info == nil {
		return "", false
	}
	return info.Description, true
}

// SampleNames returns sample names from the #CHROM header line.
func (p *Parser) SampleNames() []string {
	return p.rdr.Header.SampleNames
}

// Path returns the path the parser was opened with ("-" for readers).
func (p *Parser) Path() string {
	return p.path
}

// LineNumber returns the line number of the last variant read.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during VCF parsing with file and line context.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
}
