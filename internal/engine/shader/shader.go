// Package shader compiles the GLSL programs used by the renderer and the
// shadow volume backend.
package shader

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/studiorender/internal/logger"
)

// Program is a linked program with the locations of every uniform its
// sources declare.
type Program struct {
	Name     string
	ID       uint32
	uniforms map[string]int32
}

// Compile compiles and links a vertex and fragment shader pair.
func Compile(name, vertexSrc, fragmentSrc string) (*Program, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, errors.Wrapf(err, "%s vertex shader", name)
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, errors.Wrapf(err, "%s fragment shader", name)
	}
	defer gl.DeleteShader(frag)

	id := gl.CreateProgram()
	gl.AttachShader(id, vert)
	gl.AttachShader(id, frag)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(id, logLen, nil, &log[0])
		gl.DeleteProgram(id)
		return nil, errors.Errorf("%s link: %s", name, strings.TrimRight(string(log), "\x00"))
	}

	p := &Program{Name: name, ID: id, uniforms: make(map[string]int32)}
	for _, u := range UniformNames(vertexSrc + "\n" + fragmentSrc) {
		p.uniforms[u] = gl.GetUniformLocation(id, gl.Str(u+"\x00"))
	}
	logger.Debug("shader program linked", zap.String("program", name), zap.Int("uniforms", len(p.uniforms)))
	return p, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	s := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(s, 1, csource, nil)
	free()
	gl.CompileShader(s)

	var status int32
	gl.GetShaderiv(s, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(s, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(s, logLen, nil, &log[0])
		gl.DeleteShader(s)
		return 0, errors.New(strings.TrimRight(string(log), "\x00"))
	}
	return s, nil
}

// Uniform returns the location of a declared uniform. Unknown names and
// uniforms the linker dropped return -1, which GL ignores on upload.
func (p *Program) Uniform(name string) int32 {
	loc, ok := p.uniforms[name]
	if !ok {
		logger.ErrorOnce("shader:"+p.Name+":"+name, "unknown uniform",
			zap.String("program", p.Name), zap.String("uniform", name))
		return -1
	}
	return loc
}

// Use binds the program.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// Delete releases the program.
func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// UniformNames lists the uniforms declared in GLSL source, in order of
// first appearance. Array uniforms are listed by their base name.
func UniformNames(src string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		if !strings.HasPrefix(line, "uniform ") {
			continue
		}
		decl := strings.TrimSuffix(strings.TrimSpace(line), ";")
		fields := strings.Fields(decl)[1:]
		if len(fields) > 0 && isPrecision(fields[0]) {
			fields = fields[1:]
		}
		if len(fields) < 2 {
			continue
		}
		for _, n := range strings.Split(strings.Join(fields[1:], ""), ",") {
			if i := strings.IndexByte(n, '['); i >= 0 {
				n = n[:i]
			}
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

func isPrecision(s string) bool {
	return s == "lowp" || s == "mediump" || s == "highp"
}
