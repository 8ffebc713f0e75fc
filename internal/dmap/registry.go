package dmap

import "fmt"

// Kind selects how a tag's value is laid out on the wire.
type Kind uint8

const (
	KindChar Kind = iota + 1
	KindShort
	KindLong
	KindLongLong
	KindString
	KindDate
	KindVersion
	KindContainer
	// KindListingItem is a container whose children pass through the
	// request's field filter.
	KindListingItem
)

func (k Kind) String() string {
	switch k {
	case KindChar:
		return "char"
	case KindShort:
		return "short"
	case KindLong:
		return "long"
	case KindLongLong:
		return "longlong"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindVersion:
		return "version"
	case KindContainer:
		return "container"
	case KindListingItem:
		return "listing-item"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// WireType returns the DMAP content-code type number for the kind.
func (k Kind) WireType() uint16 {
	switch k {
	case KindChar:
		return 1
	case KindShort:
		return 3
	case KindLong:
		return 5
	case KindLongLong:
		return 7
	case KindString:
		return 9
	case KindDate:
		return 10
	case KindVersion:
		return 11
	case KindContainer, KindListingItem:
		return 12
	default:
		return 0
	}
}

// Width returns the fixed byte width of integer kinds and 0 otherwise.
func (k Kind) Width() int {
	switch k {
	case KindChar:
		return 1
	case KindShort, KindVersion:
		return 2
	case KindLong, KindDate:
		return 4
	case KindLongLong:
		return 8
	default:
		return 0
	}
}

func (k Kind) isContainer() bool {
	return k == KindContainer || k == KindListingItem
}

// Entry describes one registered tag.
type Entry struct {
	Kind Kind
	Name string
}

// Registry maps tags to their entries.
type Registry map[string]Entry

// Lookup returns the entry for tag or an UnknownTagError.
func (r Registry) Lookup(tag string) (Entry, error) {
	entry, ok := r[tag]
	if !ok {
		return Entry{}, &UnknownTagError{Tag: tag}
	}
	return entry, nil
}

// DefaultRegistry returns the content codes used by the share server.
func DefaultRegistry() Registry {
	return Registry{
		"mlog": {KindContainer, "dmap.loginresponse"},
		"mlid": {KindLong, "dmap.sessionid"},
		"mstt": {KindLong, "dmap.status"},
		"mupd": {KindContainer, "dmap.updateresponse"},
		"musr": {KindLong, "dmap.serverrevision"},
		"muty": {KindChar, "dmap.updatetype"},
		"mrco": {KindLong, "dmap.returnedcount"},
		"mtco": {KindLong, "dmap.specifiedtotalcount"},
		"mlcl": {KindContainer, "dmap.listing"},
		"mlit": {KindListingItem, "dmap.listingitem"},
		"miid": {KindLong, "dmap.itemid"},
		"mper": {KindLongLong, "dmap.persistentid"},
		"minm": {KindString, "dmap.itemname"},
		"mctc": {KindLong, "dmap.containercount"},
		"mimc": {KindLong, "dmap.itemcount"},
		"avdb": {KindContainer, "daap.serverdatabases"},
		"adbs": {KindContainer, "daap.databasesongs"},
		"asal": {KindString, "daap.songalbum"},
		"asar": {KindString, "daap.songartist"},
		"asgn": {KindString, "daap.songgenre"},
		"astn": {KindShort, "daap.songtracknumber"},
		"asyr": {KindShort, "daap.songyear"},
		"astm": {KindLong, "daap.songtime"},
		"assr": {KindLong, "daap.songsamplerate"},
		"asfm": {KindString, "daap.songformat"},
		"asda": {KindDate, "daap.songdateadded"},
		"mpro": {KindVersion, "dmap.protocolversion"},
	}
}
