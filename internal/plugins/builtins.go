// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package plugins

import (
	"tablerkit/internal/assets"
	"tablerkit/internal/config"
)

// Vendor is a plugin that only ships prebuilt script and style files.
type Vendor struct {
	name string
	js   []string
	css  []string
}

// NewVendor returns a vendor plugin serving the given source files, which
// are slash paths inside the Tabler static tree.
func NewVendor(name string, js, css []string) *Vendor {
	return &Vendor{name: name, js: js, css: css}
}

// Name implements Plugin.
func (v *Vendor) Name() string { return v.name }

// Bundles implements Plugin. Scripts are bundled under "<name>_js" and
// styles under "<name>_css".
func (v *Vendor) Bundles() []assets.Bundle {
	var out []assets.Bundle
	if len(v.js) > 0 {
		out = append(out, assets.JS(v.name+"_js", "plugins/"+v.name+".js", v.js))
	}
	if len(v.css) > 0 {
		out = append(out, assets.CSS(v.name+"_css", "plugins/"+v.name+".css", v.css))
	}
	return out
}

func vendorFactory(name string, js, css []string) Factory {
	return func(config.Map) (Plugin, error) {
		return NewVendor(name, js, css), nil
	}
}

func init() {
	Register("autosize", vendorFactory("autosize",
		[]string{"plugins/autosize/autosize.min.js"}, nil))
	Register("tomselect", vendorFactory("tomselect",
		[]string{"plugins/tomselect/tom-select.complete.min.js"},
		[]string{"plugins/tomselect/tom-select.bootstrap5.min.css"}))
	Register("sweetalert2", vendorFactory("sweetalert2",
		[]string{"plugins/sweetalert2/sweetalert2.all.min.js"}, nil))
	Register("countup", vendorFactory("countup",
		[]string{"plugins/countup/countUp.umd.js"}, nil))
}
