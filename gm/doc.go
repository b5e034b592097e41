// Package gm (stands for geometry math) provides the geometry primitives
// shared between the scene and the physics engine.
//
// It includes a vector type called Vec3 and a type named Rad to represent
// angle values in radian.
package gm
