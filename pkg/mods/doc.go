// Package mods locates a mod's content root and scans it into candidate
// files, flagging conflicts against the installation's content tree.
package mods
