package renderer

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uViewProj;

out vec3 vNormal;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
	vNormal = aNormal;
}
`

const meshFragmentShader = `
#version 410 core

in vec3 vNormal;
out vec4 FragColor;

uniform vec4 uColor;
uniform int uLit;
uniform vec3 uLightDir;

void main() {
	if (uLit == 0) {
		FragColor = uColor;
		return;
	}
	float d = max(dot(normalize(vNormal), uLightDir), 0.0);
	FragColor = vec4(uColor.rgb * (0.35 + 0.65 * d), uColor.a);
}
`

const overlayVertexShader = `
#version 410 core

layout (location = 0) in vec2 aPos;

void main() {
	gl_Position = vec4(aPos, 0.0, 1.0);
}
`

const overlayFragmentShader = `
#version 410 core

uniform float uShade;
out vec4 FragColor;

void main() {
	FragColor = vec4(0.0, 0.0, 0.0, uShade);
}
`
