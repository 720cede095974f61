package testutil

import (
	"errors"
	"sort"
	"strings"

	"github.com/junioryono/ioc"
)

// Common test errors
var (
	ErrTest        = errors.New("test error")
	ErrConstructor = errors.New("constructor error")
)

// Stack is a LIFO with no constructor; it is built from its zero value.
type Stack struct {
	items []any
}

func (s *Stack) Push(v any) {
	s.items = append(s.items, v)
}

func (s *Stack) Pop() (any, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

func (s *Stack) Len() int {
	return len(s.items)
}

// ArrayAccess is an interface with no binding by default.
type ArrayAccess interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Keys() []string
}

// ArrayObject implements ArrayAccess.
type ArrayObject struct {
	data map[string]any
}

func NewArrayObject(data map[string]any) *ArrayObject {
	o := &ArrayObject{data: make(map[string]any, len(data))}
	for k, v := range data {
		o.data[k] = v
	}
	return o
}

func (o *ArrayObject) Get(key string) (any, bool) {
	v, ok := o.data[key]
	return v, ok
}

func (o *ArrayObject) Set(key string, value any) {
	if o.data == nil {
		o.data = make(map[string]any)
	}
	o.data[key] = value
}

func (o *ArrayObject) Keys() []string {
	keys := make([]string, 0, len(o.data))
	for k := range o.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Alpha depends on an interface and a concrete type.
type Alpha struct {
	object ArrayAccess
	stack  *Stack
}

func NewAlpha(object ArrayAccess, stack *Stack) *Alpha {
	return &Alpha{object: object, stack: stack}
}

func (a *Alpha) Object() ArrayAccess { return a.object }
func (a *Alpha) Stack() *Stack       { return a.stack }

// Transport sends mail.
type Transport interface {
	Name() string
}

// SMTPTransport implements Transport.
type SMTPTransport struct {
	Server string
}

func (t *SMTPTransport) Name() string {
	if t.Server == "" {
		return "smtp"
	}
	return "smtp://" + t.Server
}

// NullTransport implements Transport and discards everything.
type NullTransport struct {
	Dropped int
}

func (t *NullTransport) Name() string { return "null" }

// Mailer mixes a nominal dependency with scalar parameters.
type Mailer struct {
	Transport Transport
	Host      string
	Port      int
}

func NewMailer(transport Transport, host string, port int) *Mailer {
	return &Mailer{Transport: transport, Host: host, Port: port}
}

// MailerParams is a parameter object for NewMailerFromParams.
type MailerParams struct {
	ioc.In

	Transport Transport
	Logger    Logger `optional:"true"`
	Host      string `default:"localhost"`
	Port      int    `default:"25"`
	Secret    string `inject:"-"`
}

func NewMailerFromParams(p MailerParams) *Mailer {
	return &Mailer{Transport: p.Transport, Host: p.Host, Port: p.Port}
}

// Logger is an interface used as an optional dependency.
type Logger interface {
	Log(msg string)
}

// MemoryLogger implements Logger.
type MemoryLogger struct {
	Lines []string
}

func (l *MemoryLogger) Log(msg string) {
	l.Lines = append(l.Lines, msg)
}

// Reporter takes an optional Logger.
type Reporter struct {
	Logger Logger
	Title  string
}

func NewReporter(logger Logger, title string) *Reporter {
	return &Reporter{Logger: logger, Title: title}
}

// Filesystem is the dependency contextual bindings swap out.
type Filesystem interface {
	Root() string
}

// LocalFilesystem implements Filesystem.
type LocalFilesystem struct {
	Path string
}

func (f *LocalFilesystem) Root() string {
	if f.Path == "" {
		return "/"
	}
	return f.Path
}

// S3Filesystem implements Filesystem.
type S3Filesystem struct {
	Bucket string
}

func (f *S3Filesystem) Root() string {
	return "s3://" + f.Bucket
}

// PhotoController and VideoController consume a Filesystem.
type PhotoController struct {
	FS Filesystem
}

func NewPhotoController(fs Filesystem) *PhotoController {
	return &PhotoController{FS: fs}
}

type VideoController struct {
	FS Filesystem
}

func NewVideoController(fs Filesystem) *VideoController {
	return &VideoController{FS: fs}
}

// Gallery depends on a PhotoController, which depends on a Filesystem.
type Gallery struct {
	Photos *PhotoController
	FS     Filesystem
}

func NewGallery(photos *PhotoController, fs Filesystem) *Gallery {
	return &Gallery{Photos: photos, FS: fs}
}

// CycleA and CycleB depend on each other.
type CycleA struct {
	B *CycleB
}

func NewCycleA(b *CycleB) *CycleA {
	return &CycleA{B: b}
}

type CycleB struct {
	A *CycleA
}

func NewCycleB(a *CycleA) *CycleB {
	return &CycleB{A: a}
}

// Broken always fails to construct.
type Broken struct{}

func NewBroken() (*Broken, error) {
	return nil, ErrConstructor
}

// Panicky panics when constructed.
type Panicky struct{}

func NewPanicky() *Panicky {
	panic("panicky constructor")
}

// Plugins has a variadic constructor.
type Plugins struct {
	Names []string
}

func NewPlugins(names ...string) *Plugins {
	return &Plugins{Names: names}
}

func (p *Plugins) String() string {
	return strings.Join(p.Names, ",")
}
