package registry

import (
	"github.com/wippyai/classload/classfile"
	"github.com/wippyai/classload/classpath"
	"github.com/wippyai/classload/errors"
)

// Option configures a registry.
type Option func(*options)

type options struct {
	platform func(string) bool
}

func defaultOptions() options {
	return options{platform: classpath.IsPlatformName}
}

// WithPlatform sets the predicate for names the environment provides
// without a definition. The default is classpath.IsPlatformName.
func WithPlatform(platform func(name string) bool) Option {
	return func(o *options) {
		if platform == nil {
			platform = func(string) bool { return false }
		}
		o.platform = platform
	}
}

// header parses data and checks that it declares name.
func header(name string, data []byte) (*classfile.Header, error) {
	hdr, err := classfile.ParseHeader(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Name == "" {
			c := *e
			c.Name = name
			return nil, &c
		}
		return nil, err
	}
	if hdr.IsModule() {
		return nil, errors.New(errors.PhaseDefine, errors.KindInvalidInput).
			Name(name).
			Detail("module descriptors cannot be defined").
			Build()
	}
	if hdr.Name != name {
		return nil, errors.New(errors.PhaseDefine, errors.KindInvalidInput).
			Name(name).
			Value(hdr.Name).
			Detail("component declares name %s", hdr.Name).
			Build()
	}
	return hdr, nil
}

// checkRequires returns a missing dependency error for the first super
// class or interface of hdr that is neither a platform name nor defined.
func checkRequires(hdr *classfile.Header, platform func(string) bool, defined func(string) bool) error {
	for _, req := range hdr.Requires() {
		if platform(req) || defined(req) {
			continue
		}
		return errors.NewMissingDependency(req, hdr.Name)
	}
	return nil
}
