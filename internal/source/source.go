package source

// Source tags the system an error originated from.
type Source string

// The closed set of sources accepted on the wire.
const (
	HoloError Source = "HoloError"
	UserError Source = "UserError"
	AppError  Source = "AppError"
)

// Family is the base of every error built for one Source. It is itself an
// error so that family membership can be checked with errors.Is.
type Family struct {
	source Source
}

// Error returns the family's source tag.
func (f *Family) Error() string {
	return string(f.source)
}

// Source returns the tag this family stamps on its errors.
func (f *Family) Source() Source {
	return f.source
}

// Family sentinels.
var (
	Holo = &Family{source: HoloError}
	User = &Family{source: UserError}
	App  = &Family{source: AppError}
)

var (
	order    = []Source{HoloError, UserError, AppError}
	families = map[Source]*Family{
		HoloError: Holo,
		UserError: User,
		AppError:  App,
	}
)

// Sources returns the accepted sources in declaration order.
func Sources() []Source {
	out := make([]Source, len(order))
	copy(out, order)
	return out
}

// Lookup returns the family registered for s.
func Lookup(s Source) (*Family, bool) {
	f, ok := families[s]
	return f, ok
}

// Valid reports whether s names one of the accepted sources.
func Valid(s string) bool {
	_, ok := families[Source(s)]
	return ok
}
